// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package lorawan implements the LoRaWAN frame formats, AES-128 session-key
// derivation, AES-CMAC message integrity codes, MAC commands and regional
// parameter presets needed to exchange realistic frames in the simulator.
package lorawan

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// EUI64 is an 8-byte extended unique identifier (DevEUI/JoinEUI).
type EUI64 [8]byte

func (e EUI64) String() string { return hex.EncodeToString(e[:]) }

func (e EUI64) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *EUI64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != 8 {
		return fmt.Errorf("lorawan: invalid EUI64 length %d", len(b))
	}
	copy(e[:], b)
	return nil
}

// DevAddr is the 4-byte device address assigned at join time.
type DevAddr [4]byte

func (d DevAddr) String() string { return hex.EncodeToString(d[:]) }

// AES128Key is a 128-bit AES key (root or session).
type AES128Key [16]byte

func (k AES128Key) String() string { return hex.EncodeToString(k[:]) }

// MType is the LoRaWAN message type carried in MHDR.
type MType byte

const (
	MTypeJoinRequest MType = iota
	MTypeJoinAccept
	MTypeUnconfirmedDataUp
	MTypeUnconfirmedDataDown
	MTypeConfirmedDataUp
	MTypeConfirmedDataDown
	MTypeRFU
	MTypeProprietary
)

// Major is the LoRaWAN major version carried in MHDR.
type Major byte

const (
	Major1_0 Major = 0
	Major1_1 Major = 1
)

// MHDR is the 1-byte MAC header.
type MHDR struct {
	MType MType
	Major Major
}

// Encode packs MHDR into its single wire byte.
func (h MHDR) Encode() byte {
	return byte(h.MType)<<5 | byte(h.Major)&0x3
}

// DecodeMHDR unpacks a wire byte into an MHDR.
func DecodeMHDR(b byte) MHDR {
	return MHDR{MType: MType(b >> 5), Major: Major(b & 0x3)}
}

// FCtrl is the frame-control byte of FHDR.
type FCtrl struct {
	ADR       bool
	ADRACKReq bool
	ACK       bool
	ClassB    bool // uplink: FPending used for downlink instead
	FPending  bool
	FOptsLen  uint8 // low 4 bits, length of FOpts in bytes
}

// FHDR is the frame header, present in all data messages.
type FHDR struct {
	DevAddr DevAddr
	FCtrl   FCtrl
	FCnt    uint16
	FOpts   []byte
}

// MACPayload is the payload of a data message: frame header, optional port,
// and the (possibly encrypted) application/MAC-command payload.
type MACPayload struct {
	FHDR       FHDR
	FPort      *uint8
	FRMPayload []byte
}

// PHYPayload is the complete over-the-air frame.
type PHYPayload struct {
	MHDR       MHDR
	MACPayload []byte // already MIC-less, serialized MACPayload bytes
	MIC        [4]byte
}

// JoinRequestPayload is the cleartext OTAA join-request body.
type JoinRequestPayload struct {
	JoinEUI  EUI64
	DevEUI   EUI64
	DevNonce uint16
}

// DLSettings are the downlink parameters conveyed in a join-accept.
type DLSettings struct {
	RX1DROffset uint8
	RX2DataRate uint8
	OptNeg      bool // set for LoRaWAN 1.1 join-accepts
}

// JoinAcceptPayload is the cleartext OTAA join-accept body (before the
// AES-128 encrypt-as-decrypt obfuscation applied over the air).
type JoinAcceptPayload struct {
	JoinNonce  uint32 // 24-bit
	NetID      [3]byte
	DevAddr    DevAddr
	DLSettings DLSettings
	RxDelay    uint8
	CFList     []byte
}

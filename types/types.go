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

// Package types holds the shared identifiers and enums used across the
// simulation engine, so that no two packages invent their own NodeId.
package types

import "fmt"

// NodeId identifies an end-device within a single simulation run.
type NodeId uint32

// GatewayId identifies a gateway within a single simulation run.
type GatewayId uint32

// ChannelId identifies an entry in a region's default channel list (a
// frequency/bandwidth pair).
type ChannelId uint16

// InvalidNodeId is returned where no node applies.
const InvalidNodeId = NodeId(0)

// InvalidGatewayId is returned where no gateway applies.
const InvalidGatewayId = GatewayId(0)

func (n NodeId) String() string {
	return fmt.Sprintf("node-%d", uint32(n))
}

func (g GatewayId) String() string {
	return fmt.Sprintf("gw-%d", uint32(g))
}

// SpreadingFactor is one of LoRa's SF7..SF12.
type SpreadingFactor uint8

const (
	SF7  SpreadingFactor = 7
	SF8  SpreadingFactor = 8
	SF9  SpreadingFactor = 9
	SF10 SpreadingFactor = 10
	SF11 SpreadingFactor = 11
	SF12 SpreadingFactor = 12
)

func (sf SpreadingFactor) String() string {
	return fmt.Sprintf("SF%d", uint8(sf))
}

// Valid reports whether sf is one of the six LoRa spreading factors.
func (sf SpreadingFactor) Valid() bool {
	return sf >= SF7 && sf <= SF12
}

// Bandwidth is a channel bandwidth in Hz.
type Bandwidth uint32

const (
	BW125kHz Bandwidth = 125000
	BW250kHz Bandwidth = 250000
	BW500kHz Bandwidth = 500000
)

// DataRate is a region-indexed data-rate number (DR0..DR15), whose meaning
// (an SF/BW pair) is resolved through a region's data-rate table
// (lorawan.Region.DataRateDef).
type DataRate uint8

// DeviceClass is the LoRaWAN end-device class.
type DeviceClass uint8

const (
	ClassA DeviceClass = iota
	ClassB
	ClassC
)

func (c DeviceClass) String() string {
	switch c {
	case ClassA:
		return "A"
	case ClassB:
		return "B"
	case ClassC:
		return "C"
	default:
		return "?"
	}
}

// RadioState is one of the energy-accounted radio states (spec §4.2).
type RadioState uint8

const (
	RadioSleep RadioState = iota
	RadioIdle
	RadioRx
	RadioListen
	RadioProcessing
	RadioTx
	RadioStartupTx
	RadioStartupRx
	RadioPreamble
	RadioRampUp
	RadioRampDown
)

func (s RadioState) String() string {
	switch s {
	case RadioSleep:
		return "sleep"
	case RadioIdle:
		return "idle"
	case RadioRx:
		return "rx"
	case RadioListen:
		return "listen"
	case RadioProcessing:
		return "processing"
	case RadioTx:
		return "tx"
	case RadioStartupTx:
		return "startup_tx"
	case RadioStartupRx:
		return "startup_rx"
	case RadioPreamble:
		return "preamble"
	case RadioRampUp:
		return "ramp_up"
	case RadioRampDown:
		return "ramp_down"
	default:
		return "?"
	}
}

// NumRadioStates is the count of distinct RadioState values.
const NumRadioStates = int(RadioRampDown) + 1

// RegionID names a supported LoRaWAN regional parameter set.
type RegionID uint8

const (
	RegionEU868 RegionID = iota
	RegionUS915
	RegionAU915
	RegionAS923
	RegionIN865
	RegionKR920
)

func (r RegionID) String() string {
	switch r {
	case RegionEU868:
		return "EU868"
	case RegionUS915:
		return "US915"
	case RegionAU915:
		return "AU915"
	case RegionAS923:
		return "AS923"
	case RegionIN865:
		return "IN865"
	case RegionKR920:
		return "KR920"
	default:
		return "?"
	}
}

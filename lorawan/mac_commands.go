// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in frame.go.

package lorawan

import "fmt"

// CID identifies a MAC command.
type CID byte

const (
	CIDLinkCheck     CID = 0x02
	CIDLinkADR       CID = 0x03
	CIDDutyCycle     CID = 0x04
	CIDRXParamSetup  CID = 0x05
	CIDDevStatus     CID = 0x06
	CIDNewChannel    CID = 0x07
	CIDRXTimingSetup CID = 0x08
	CIDTxParamSetup  CID = 0x09
	CIDDlChannel     CID = 0x0A
	CIDDeviceTime    CID = 0x0D
)

// MACCommand is one parsed MAC command, request or answer.
type MACCommand struct {
	CID     CID
	Payload []byte
}

// uplinkPayloadLen gives the Answer payload length for cid, or -1 if cid is
// not a recognized uplink MAC command.
func uplinkPayloadLen(cid CID) int {
	switch cid {
	case CIDLinkCheck:
		return 0
	case CIDLinkADR:
		return 1
	case CIDDutyCycle:
		return 0
	case CIDRXParamSetup:
		return 1
	case CIDDevStatus:
		return 2
	case CIDNewChannel:
		return 1
	case CIDRXTimingSetup:
		return 0
	case CIDTxParamSetup:
		return 0
	case CIDDlChannel:
		return 1
	case CIDDeviceTime:
		return 0
	default:
		return -1
	}
}

// downlinkPayloadLen gives the Request payload length for cid, or -1 if cid
// is not a recognized downlink MAC command.
func downlinkPayloadLen(cid CID) int {
	switch cid {
	case CIDLinkCheck:
		return 2
	case CIDLinkADR:
		return 4
	case CIDDutyCycle:
		return 1
	case CIDRXParamSetup:
		return 4
	case CIDDevStatus:
		return 0
	case CIDNewChannel:
		return 5
	case CIDRXTimingSetup:
		return 1
	case CIDTxParamSetup:
		return 1
	case CIDDlChannel:
		return 4
	case CIDDeviceTime:
		return 5
	default:
		return -1
	}
}

// ParseMACCommands splits data (FOpts or a port-0 FRMPayload) into
// individual MAC commands. uplink selects which direction's payload-length
// table to use for framing.
func ParseMACCommands(uplink bool, data []byte) ([]MACCommand, error) {
	var commands []MACCommand
	for i := 0; i < len(data); {
		cid := CID(data[i])
		i++

		var payloadLen int
		if uplink {
			payloadLen = uplinkPayloadLen(cid)
		} else {
			payloadLen = downlinkPayloadLen(cid)
		}
		if payloadLen < 0 {
			return nil, fmt.Errorf("lorawan: unknown MAC command CID 0x%02x", byte(cid))
		}
		if i+payloadLen > len(data) {
			return nil, fmt.Errorf("lorawan: truncated MAC command payload for CID 0x%02x", byte(cid))
		}

		var payload []byte
		if payloadLen > 0 {
			payload = data[i : i+payloadLen]
		}
		commands = append(commands, MACCommand{CID: cid, Payload: payload})
		i += payloadLen
	}
	return commands, nil
}

// EncodeMACCommands concatenates commands into FOpts/FRMPayload wire bytes.
func EncodeMACCommands(commands []MACCommand) []byte {
	var data []byte
	for _, cmd := range commands {
		data = append(data, byte(cmd.CID))
		data = append(data, cmd.Payload...)
	}
	return data
}

// TX power ladder shared by the network server's ADR computation and the
// node's LinkADRReq decoding (spec §4.6): "decreasing TX power in 3 dB
// steps to P_min" / "raising TX power to P_max".
const (
	TxPowerMaxDbm = 14.0
	TxPowerMinDbm = 2.0
	TxPowerStepDb = 3.0
)

// TxPowerIdxForDbm encodes a TX power in dBm into the TXPower index a
// LinkADRReq payload carries (index 0 = TxPowerMaxDbm, increasing as power
// decreases by TxPowerStepDb).
func TxPowerIdxForDbm(dbm float64) uint8 {
	steps := (TxPowerMaxDbm - dbm) / TxPowerStepDb
	idx := int(steps + 0.5) // round half away from zero for non-negative steps
	if idx < 0 {
		idx = 0
	}
	if idx > 0xF {
		idx = 0xF
	}
	return uint8(idx)
}

// TxPowerDbmForIdx decodes a LinkADRReq TXPower index back into dBm.
func TxPowerDbmForIdx(idx uint8) float64 {
	dbm := TxPowerMaxDbm - float64(idx)*TxPowerStepDb
	if dbm < TxPowerMinDbm {
		return TxPowerMinDbm
	}
	if dbm > TxPowerMaxDbm {
		return TxPowerMaxDbm
	}
	return dbm
}

// LinkADRReq builds the payload of a LinkADRReq MAC command: data-rate and
// TX-power index packed into one byte, a 16-bit channel mask, and a
// redundancy byte (ChMaskCntl high nibble, NbTrans low nibble).
func LinkADRReq(dataRate, txPowerIdx uint8, chMask uint16, chMaskCntl, nbTrans uint8) MACCommand {
	payload := []byte{
		dataRate<<4 | txPowerIdx&0xF,
		byte(chMask),
		byte(chMask >> 8),
		chMaskCntl<<4 | nbTrans&0xF,
	}
	return MACCommand{CID: CIDLinkADR, Payload: payload}
}

// LinkADRAnsStatus decodes the 1-byte status of a LinkADRAns: bit0
// ChannelMaskAck, bit1 DataRateAck, bit2 PowerAck.
type LinkADRAnsStatus struct {
	ChannelMaskAck bool
	DataRateAck    bool
	PowerAck       bool
}

// DecodeLinkADRAns decodes a LinkADRAns payload.
func DecodeLinkADRAns(payload []byte) (LinkADRAnsStatus, error) {
	if len(payload) != 1 {
		return LinkADRAnsStatus{}, fmt.Errorf("lorawan: LinkADRAns wants 1 byte, got %d", len(payload))
	}
	b := payload[0]
	return LinkADRAnsStatus{
		ChannelMaskAck: b&0x1 != 0,
		DataRateAck:    b&0x2 != 0,
		PowerAck:       b&0x4 != 0,
	}, nil
}

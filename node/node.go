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

// Package node models one end-device: its MAC counters, duty-cycle budget,
// ADR client state, and class A/B/C receive-window scheduling.
package node

import (
	"github.com/rot226/loraflexsim/lorawan"
	"github.com/rot226/loraflexsim/types"
)

// SubBand identifies a duty-cycle-regulated group of channels (e.g. EU868's
// g1/g2/g3 bands), matched by tag rather than raw frequency.
type SubBand string

// DutyCycleBudget tracks the airtime used within the current regulatory
// window for one sub-band.
type DutyCycleBudget struct {
	LimitFraction  float64 // e.g. 0.01 for 1%
	WindowNanos    uint64
	windowStart    uint64
	usedNanos      uint64
}

// Allow reports whether txNanos more airtime fits inside this sub-band's
// duty-cycle budget at timestamp now, rolling the window over first if due.
func (b *DutyCycleBudget) Allow(now uint64, txNanos uint64) bool {
	b.rollWindow(now)
	allowed := uint64(float64(b.WindowNanos) * b.LimitFraction)
	return b.usedNanos+txNanos <= allowed
}

// Consume records txNanos of airtime against the budget at timestamp now.
func (b *DutyCycleBudget) Consume(now uint64, txNanos uint64) {
	b.rollWindow(now)
	b.usedNanos += txNanos
}

// NextAllowedTime returns the earliest timestamp at or after now at which
// txNanos more airtime would fit the budget: either now (if it already
// fits) or the start of the next regulatory window.
func (b *DutyCycleBudget) NextAllowedTime(now uint64, txNanos uint64) uint64 {
	if b.Allow(now, txNanos) {
		return now
	}
	return b.windowStart + b.WindowNanos
}

func (b *DutyCycleBudget) rollWindow(now uint64) {
	if b.WindowNanos == 0 {
		return
	}
	if now-b.windowStart >= b.WindowNanos {
		b.windowStart = now
		b.usedNanos = 0
	}
}

// ADRClient holds a device's local view of Adaptive Data Rate: it only acts
// on a LinkADRReq received from the network server, never computes its own
// margin (that lives in networkserver, which sees all gateways' SNIR).
type ADRClient struct {
	Enabled    bool
	DataRate   types.DataRate
	TxPowerIdx uint8
	NbTrans    uint8
}

// ApplyLinkADRReq updates local DR/power/NbTrans from a received request,
// returning the LinkADRAns status to report back.
func (a *ADRClient) ApplyLinkADRReq(req lorawan.MACCommand) lorawan.LinkADRAnsStatus {
	if len(req.Payload) != 4 {
		return lorawan.LinkADRAnsStatus{}
	}
	drTxPower := req.Payload[0]
	redundancy := req.Payload[3]

	a.DataRate = types.DataRate(drTxPower >> 4)
	a.TxPowerIdx = drTxPower & 0xF
	a.NbTrans = redundancy & 0xF

	return lorawan.LinkADRAnsStatus{ChannelMaskAck: true, DataRateAck: true, PowerAck: true}
}

// AdrAckLimit and AdrAckDelay are the standard LoRaWAN ADR back-off
// schedule: after AdrAckLimit uplinks without a downlink, a node sets
// ADRACKReq on its next uplink; after AdrAckDelay more uplinks still
// without a downlink, it escalates (raise power, then raise SF).
const (
	AdrAckLimit = 64
	AdrAckDelay = 32
)

// Node is one simulated end-device.
type Node struct {
	Id      types.NodeId
	DevAddr lorawan.DevAddr
	Class   types.DeviceClass
	Region  types.RegionID

	NwkSKey lorawan.AES128Key
	AppSKey lorawan.AES128Key

	FCntUp   uint16
	FCntDown uint16

	X, Y float64

	ADR         ADRClient
	DutyCycle   map[SubBand]*DutyCycleBudget
	PingSlotIdx uint8 // class B ping-slot offset within the beacon period

	RadioState types.RadioState

	// SF, TxPowerDbm and Channel are the node's current radio configuration;
	// ADR (spec §4.4) mutates SF/TxPowerDbm via ApplyLinkADRReq and the
	// node-side back-off EscalateADR, everything else leaves them alone.
	SF           types.SpreadingFactor
	TxPowerDbm   float64
	Channel      int
	PayloadBytes int

	// PeriodSec is the mean Poisson inter-arrival period this node was
	// configured with; the simulator re-reads it each time it books the
	// node's next arrival.
	PeriodSec float64

	// PacketBudget, if > 0, caps the number of uplinks this node ever
	// originates (spec §6 "packet budget per node"); 0 means unlimited,
	// bounded only by the run's simulated-time limit. PacketsSent counts the
	// uplinks booked so far against it.
	PacketBudget uint32
	PacketsSent  uint32

	// LastTxEndNanos and InFlight implement the "postpone only, never
	// redraw" backpressure rule (spec §4.4 TX scheduling / Design Notes
	// "Exponential inter-arrival contract"): a drawn arrival that lands
	// before the previous transmission finishes is delayed to just after
	// LastTxEndNanos, never discarded and redrawn.
	LastTxEndNanos uint64
	InFlight       bool

	// AdrAckCnt counts uplinks sent since the last downlink was received;
	// RegisterDownlink (called on any downlink) zeroes it.
	AdrAckCnt uint32

	// BatteryCapacityJoules, if > 0, caps this node's lifetime energy budget
	// (spec §3 battery invariant: "non-increasing; if capacity is set, a
	// node with zero remaining energy ceases to transmit"). Zero means
	// unlimited (no battery modeled), matching the spec's "optional" field.
	BatteryCapacityJoules float64
}

// BatteryDepleted reports whether usedJoules (the node's cumulative energy
// spent so far) has exhausted a configured battery capacity. A node with no
// capacity configured (BatteryCapacityJoules == 0) never reports depleted.
func (n *Node) BatteryDepleted(usedJoules float64) bool {
	return n.BatteryCapacityJoules > 0 && usedJoules >= n.BatteryCapacityJoules
}

// New creates a Node at (x,y) starting at SF7, 14 dBm and a 20-byte payload,
// whatever the region.
func New(id types.NodeId, devAddr lorawan.DevAddr, class types.DeviceClass, region types.RegionID, x, y float64) *Node {
	return &Node{
		Id:           id,
		DevAddr:      devAddr,
		Class:        class,
		Region:       region,
		X:            x,
		Y:            y,
		DutyCycle:    map[SubBand]*DutyCycleBudget{},
		RadioState:   types.RadioSleep,
		SF:           types.SF7,
		TxPowerDbm:   14.0,
		PayloadBytes: 20,
	}
}

// RegisterUplink increments the ADRACKReq counter; call once per uplink.
func (n *Node) RegisterUplink() {
	n.AdrAckCnt++
}

// RegisterDownlink resets the ADRACKReq counter; call whenever any downlink
// (data or MAC-only) is received.
func (n *Node) RegisterDownlink() {
	n.AdrAckCnt = 0
}

// NeedsADRAckReq reports whether this node must set ADRACKReq on its next
// uplink (AdrAckLimit uplinks have elapsed since the last downlink).
func (n *Node) NeedsADRAckReq() bool {
	return n.ADR.Enabled && n.AdrAckCnt >= AdrAckLimit
}

// ShouldEscalateADR reports whether this node must raise power/SF on its
// own initiative (AdrAckLimit+AdrAckDelay uplinks with no server response).
func (n *Node) ShouldEscalateADR() bool {
	return n.ADR.Enabled && n.AdrAckCnt >= AdrAckLimit+AdrAckDelay
}

// SubBandBudget returns (creating if needed) the DutyCycleBudget for band,
// with the given limit fraction and regulatory window.
func (n *Node) SubBandBudget(band SubBand, limitFraction float64, windowNanos uint64) *DutyCycleBudget {
	b, ok := n.DutyCycle[band]
	if !ok {
		b = &DutyCycleBudget{LimitFraction: limitFraction, WindowNanos: windowNanos}
		n.DutyCycle[band] = b
	}
	return b
}

// NextFCntUp returns the next uplink frame counter and increments it.
func (n *Node) NextFCntUp() uint16 {
	v := n.FCntUp
	n.FCntUp++
	return v
}

// ApplyLinkADRReq decodes a server-issued LinkADRReq against region (to
// resolve the requested DataRate back to an SF) and applies the resulting
// SF/TxPowerDbm/NbTrans to the node's radio configuration, resetting the
// ADRACKReq back-off counter as any downlink does. Returns the LinkADRAns
// status to report back to the server.
func (n *Node) ApplyLinkADRReq(region lorawan.Region, req lorawan.MACCommand) lorawan.LinkADRAnsStatus {
	status := n.ADR.ApplyLinkADRReq(req)
	if !status.DataRateAck {
		return status
	}

	dr, ok := region.DataRateDef(n.ADR.DataRate)
	if !ok {
		return lorawan.LinkADRAnsStatus{ChannelMaskAck: status.ChannelMaskAck, PowerAck: status.PowerAck}
	}

	n.SF = dr.SF
	n.TxPowerDbm = lorawan.TxPowerDbmForIdx(n.ADR.TxPowerIdx)
	n.RegisterDownlink()
	return status
}

// EscalateADR implements the node-side half of the spec §4.4 ADR back-off
// schedule: once ShouldEscalateADR fires (AdrAckLimit+AdrAckDelay uplinks
// with no server response), the node raises its own TX power toward
// lorawan.TxPowerMaxDbm first, and only once already at max power raises SF
// toward SF12. Returns false (no-op) once both are already at their
// ceiling. Callers should reset AdrAckCnt after a successful escalation so
// the node doesn't re-escalate every uplink.
func (n *Node) EscalateADR() bool {
	if n.TxPowerDbm < lorawan.TxPowerMaxDbm {
		n.TxPowerDbm += lorawan.TxPowerStepDb
		if n.TxPowerDbm > lorawan.TxPowerMaxDbm {
			n.TxPowerDbm = lorawan.TxPowerMaxDbm
		}
		return true
	}
	if n.SF < types.SF12 {
		n.SF++
		return true
	}
	return false
}

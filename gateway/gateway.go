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

// Package gateway models a LoRaWAN gateway's multi-channel reception: one
// in-flight reception per channel, capture decisions between colliding
// frames on the same channel, and a per-(node,gateway) SNIR history feeding
// the network server's ADR computation.
package gateway

import (
	"math"

	"github.com/rot226/loraflexsim/logger"
	"github.com/rot226/loraflexsim/phy"
	"github.com/rot226/loraflexsim/types"
)

// maxSnirSamples bounds the per-link SNIR history, per the ADR sliding
// window the network server averages/maxes over.
const maxSnirSamples = 20

// preambleSymbols matches the simulator's default AirtimeParams.PreambleSymbols
// (8 symbols), used to compute each reception's 6-symbol capture window.
const preambleSymbols = 8

// Reception is one frame currently being received on a channel.
type Reception struct {
	NodeId     types.NodeId
	StartNanos uint64
	EndNanos   uint64
	SF         types.SpreadingFactor
	BW         types.Bandwidth
	RssiDbm    phy.DbValue
	// accumDbm is the combined power (this frame's RSSI plus any
	// co-channel interferers that have since overlapped it), used to
	// evaluate capture and PER at EndNanos.
	accumDbm phy.DbValue
	captured bool // set false if a stronger frame has captured the channel away from this one
}

// Gateway tracks one in-flight Reception per channel and the per-node SNIR
// history used for ADR.
type Gateway struct {
	Id       types.GatewayId
	X, Y     float64
	receptions map[types.ChannelId]*Reception
	snirHistory map[types.NodeId][]phy.DbValue
}

// New creates a Gateway at the given position.
func New(id types.GatewayId, x, y float64) *Gateway {
	return &Gateway{
		Id:          id,
		X:           x,
		Y:           y,
		receptions:  map[types.ChannelId]*Reception{},
		snirHistory: map[types.NodeId][]phy.DbValue{},
	}
}

// DistanceTo returns the Euclidean distance (in the scenario's position
// units) between this gateway and a point.
func (g *Gateway) DistanceTo(x, y float64) float64 {
	dx, dy := x-g.X, y-g.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// StartReception begins receiving a frame on ch. If another reception is
// already in flight on the same channel, the capture rule (phy.Captures)
// decides which one survives; the loser is marked uncaptured and its power
// is folded into the winner's accumulated interference.
func (g *Gateway) StartReception(ch types.ChannelId, r *Reception) {
	existing := g.receptions[ch]
	if existing == nil || !existing.captured {
		// No live contender (or the slot's previous occupant already
		// lost its own capture race): this frame starts clean.
		r.accumDbm = r.RssiDbm
		r.captured = true
		g.receptions[ch] = r
		return
	}

	// The capture window (spec §4.3) protects whichever frame started
	// first: a later arrival can only defeat it once their overlap has run
	// past csBegin, regardless of how much stronger it is.
	rCanDefeatExisting := phy.DefeatsCaptureWindow(existing.StartNanos, r.StartNanos, r.EndNanos, existing.SF, existing.BW, preambleSymbols)
	existingCanDefeatR := phy.DefeatsCaptureWindow(r.StartNanos, existing.StartNanos, existing.EndNanos, r.SF, r.BW, preambleSymbols)

	if rCanDefeatExisting && phy.Captures(existing.RssiDbm, r.RssiDbm, existing.SF, r.SF) {
		// New frame captures the receiver away from the existing one.
		existing.captured = false
		r.accumDbm = phy.AddPowersDbm(r.RssiDbm, existing.RssiDbm)
		r.captured = true
		g.receptions[ch] = r
	} else if existingCanDefeatR && phy.Captures(r.RssiDbm, existing.RssiDbm, r.SF, existing.SF) {
		// Existing frame holds the receiver; fold the new frame's power
		// in as interference against it.
		existing.accumDbm = phy.AddPowersDbm(existing.accumDbm, r.RssiDbm)
		r.captured = false
	} else {
		// Neither captures: both frames are now mutually interfering.
		existing.accumDbm = phy.AddPowersDbm(existing.accumDbm, r.RssiDbm)
		r.accumDbm = phy.AddPowersDbm(r.RssiDbm, existing.RssiDbm)
	}
}

// FinishReception removes the in-flight reception for ch (if it is r) and
// reports whether r was captured (i.e. still eligible for successful
// reception, pending the PHY's packet-error-rate roll).
func (g *Gateway) FinishReception(ch types.ChannelId, r *Reception) (captured bool, accumDbm phy.DbValue) {
	if g.receptions[ch] == r {
		delete(g.receptions, ch)
	}
	return r.captured, r.accumDbm
}

// RecordSnir appends a new SNIR sample to nodeId's sliding window, evicting
// the oldest sample once the window exceeds maxSnirSamples.
func (g *Gateway) RecordSnir(nodeId types.NodeId, snirDb phy.DbValue) {
	hist := g.snirHistory[nodeId]
	hist = append(hist, snirDb)
	if len(hist) > maxSnirSamples {
		hist = hist[len(hist)-maxSnirSamples:]
	}
	g.snirHistory[nodeId] = hist
}

// SnirHistory returns nodeId's current SNIR sample window (oldest first).
// The returned slice must not be mutated by the caller.
func (g *Gateway) SnirHistory(nodeId types.NodeId) []phy.DbValue {
	return g.snirHistory[nodeId]
}

// AvgSnir returns the arithmetic mean of nodeId's SNIR window.
func (g *Gateway) AvgSnir(nodeId types.NodeId) (phy.DbValue, bool) {
	hist := g.snirHistory[nodeId]
	if len(hist) == 0 {
		return 0, false
	}
	var sum phy.DbValue
	for _, v := range hist {
		sum += v
	}
	return sum / float64(len(hist)), true
}

// MaxSnir returns the maximum of nodeId's SNIR window.
func (g *Gateway) MaxSnir(nodeId types.NodeId) (phy.DbValue, bool) {
	hist := g.snirHistory[nodeId]
	if len(hist) == 0 {
		return 0, false
	}
	max := hist[0]
	for _, v := range hist[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

// AssertNoDanglingReception is a development-time invariant check: every
// channel entry still tracked after a run must have been finished.
func (g *Gateway) AssertNoDanglingReception() {
	logger.AssertEqual(0, len(g.receptions))
}

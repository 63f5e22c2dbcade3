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

// Package networkserver implements the network-server side of the
// simulation: uplink de-duplication across gateways, per-node ADR
// computation from the best gateway's SNIR history, and RX1/RX2/ping-slot/
// class-C downlink scheduling.
package networkserver

import (
	"math"

	"github.com/rot226/loraflexsim/gateway"
	"github.com/rot226/loraflexsim/lorawan"
	"github.com/rot226/loraflexsim/phy"
	"github.com/rot226/loraflexsim/types"
)

// dedupWindowEntries bounds the uplink-dedup cache so a long run's memory
// does not grow unboundedly; entries beyond this count evict oldest-first.
const dedupWindowEntries = 4096

type dedupKey struct {
	DevAddr lorawan.DevAddr
	FCnt    uint16
}

// DedupCache recognizes the same uplink arriving at multiple gateways within
// the processing window, so the server evaluates it (and books its ADR
// sample) exactly once.
type DedupCache struct {
	seen  map[dedupKey]struct{}
	order []dedupKey
}

// NewDedupCache creates an empty DedupCache.
func NewDedupCache() *DedupCache {
	return &DedupCache{seen: map[dedupKey]struct{}{}}
}

// SeenBefore reports whether (devAddr, fcnt) was already recorded, and
// records it if not (so the next call with the same key returns true).
func (c *DedupCache) SeenBefore(devAddr lorawan.DevAddr, fcnt uint16) bool {
	key := dedupKey{devAddr, fcnt}
	if _, ok := c.seen[key]; ok {
		return true
	}
	c.seen[key] = struct{}{}
	c.order = append(c.order, key)
	if len(c.order) > dedupWindowEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
	}
	return false
}

// ADRMethod selects how a multi-gateway SNIR history is reduced to a single
// margin figure for the LinkADRReq decision.
type ADRMethod uint8

const (
	ADRAvg ADRMethod = iota
	ADRMax
)

// requiredSnrDb is the minimum demodulation SNR this region's reference
// receiver needs for the target SF, plus an ADR margin. snrFloorDb holds the
// same values as phy's per-SF threshold table but is a separate copy.
func requiredSnrDb(sf types.SpreadingFactor) phy.DbValue {
	// 2.5 dB margin above the hard demodulation floor, a common ADR design
	// choice so the network doesn't oscillate around the failure boundary.
	const adrMarginDb = 2.5
	idx := int(sf) - int(types.SF7)
	if idx < 0 {
		idx = 0
	}
	if idx > 5 {
		idx = 5
	}
	return snrFloorDb[idx] + adrMarginDb
}

var snrFloorDb = [6]phy.DbValue{-7.5, -10, -12.5, -15, -17.5, -20}

// TX power bounds and step size for the ADR power ladder (spec §4.6:
// "decreasing TX power in 3 dB steps to P_min" / "raising TX power to
// P_max"), shared with the node's LinkADRReq decoding via the lorawan
// package so both sides of the wire round-trip agree on the ladder.
const (
	TxPowerMaxDbm = lorawan.TxPowerMaxDbm
	TxPowerMinDbm = lorawan.TxPowerMinDbm
	TxPowerStepDb = lorawan.TxPowerStepDb
)

// deviceMarginDb is the extra safety margin subtracted from the measured
// SNR before computing Nstep, per spec §4.6's `SNRmargin = SNRm -
// requiredSNR(SF) - deviceMargin`. Fixed at 0; nothing configures it. Kept
// as a named constant rather than inlined so the formula reads the same as
// the spec.
const deviceMarginDb = 0.0

// ADRResult is the outcome of ComputeADR: the new SF and/or TX power to
// request, if a change is warranted.
type ADRResult struct {
	Changed      bool
	NewSF        types.SpreadingFactor
	NewTxPowerDb float64
	Nstep        int // positive: margin to spend (SF down, then power down); negative: deficit to cover (power up, then SF up)
}

// ComputeADR looks at the best SNIR this node achieved across all of its
// gateways (selected by method), derives Nstep per spec §4.6, and spends it
// SF-first: positive Nstep lowers SF toward SF7 before lowering TX power
// toward TxPowerMinDbm; negative Nstep raises TX power toward TxPowerMaxDbm
// before raising SF.
func ComputeADR(method ADRMethod, gateways []*gateway.Gateway, nodeId types.NodeId, currentSF types.SpreadingFactor, currentTxPowerDb float64) ADRResult {
	best, ok := bestSnir(method, gateways, nodeId)
	if !ok {
		return ADRResult{}
	}

	margin := best - requiredSnrDb(currentSF) - deviceMarginDb
	nStep := int(math.Round(margin / TxPowerStepDb))
	if nStep == 0 {
		return ADRResult{}
	}

	sf := int(currentSF)
	txPower := currentTxPowerDb
	remaining := nStep

	if remaining > 0 {
		// Spend margin lowering SF first (SF12 -> SF7), then lowering power.
		for remaining > 0 && sf > int(types.SF7) {
			sf--
			remaining--
		}
		for remaining > 0 && txPower > TxPowerMinDbm {
			txPower -= TxPowerStepDb
			if txPower < TxPowerMinDbm {
				txPower = TxPowerMinDbm
			}
			remaining--
		}
	} else {
		// Cover a deficit by raising power first, then raising SF.
		for remaining < 0 && txPower < TxPowerMaxDbm {
			txPower += TxPowerStepDb
			if txPower > TxPowerMaxDbm {
				txPower = TxPowerMaxDbm
			}
			remaining++
		}
		for remaining < 0 && sf < int(types.SF12) {
			sf++
			remaining++
		}
	}

	newSF := types.SpreadingFactor(sf)
	if newSF == currentSF && txPower == currentTxPowerDb {
		return ADRResult{}
	}

	return ADRResult{Changed: true, NewSF: newSF, NewTxPowerDb: txPower, Nstep: nStep}
}

// BuildLinkADRReq turns a Changed ADRResult into the wire LinkADRReq MAC
// command to send the node (spec §4.6: "Emit LinkADRReq when SF or power
// changes"), resolving the new SF to this region's DataRate index. ok is
// false (and the returned command is the zero value) when result carries no
// change, or when region has no DataRate entry for the requested SF.
func BuildLinkADRReq(result ADRResult, region lorawan.Region, chMask uint16, chMaskCntl, nbTrans uint8) (lorawan.MACCommand, bool) {
	if !result.Changed {
		return lorawan.MACCommand{}, false
	}
	dr, ok := region.DRForSF(result.NewSF)
	if !ok {
		return lorawan.MACCommand{}, false
	}
	txPowerIdx := lorawan.TxPowerIdxForDbm(result.NewTxPowerDb)
	return lorawan.LinkADRReq(uint8(dr), txPowerIdx, chMask, chMaskCntl, nbTrans), true
}

func bestSnir(method ADRMethod, gateways []*gateway.Gateway, nodeId types.NodeId) (phy.DbValue, bool) {
	var best phy.DbValue
	found := false
	for _, gw := range gateways {
		var v phy.DbValue
		var ok bool
		if method == ADRMax {
			v, ok = gw.MaxSnir(nodeId)
		} else {
			v, ok = gw.AvgSnir(nodeId)
		}
		if !ok {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best, found
}

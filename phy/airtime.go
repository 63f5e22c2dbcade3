// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in phy.go.

package phy

import (
	"math"
	"time"

	"github.com/rot226/loraflexsim/types"
)

// AirtimeParams are the PHY-layer parameters a LoRa uplink/downlink is sent
// with, as needed for the symbol-counting airtime formula (Semtech AN1200.13).
type AirtimeParams struct {
	SF               types.SpreadingFactor
	BW               types.Bandwidth
	CodingRate       int  // 1..4, for 4/(4+CodingRate)
	PreambleSymbols  int  // typically 8
	HeaderEnabled    bool // explicit header (true) vs implicit header (false)
	LowDataRateOptim bool // mandatory for BW125/SF11-12
	PayloadBytes     int
	CRCEnabled       bool
}

// SymbolDuration returns Tsym = 2^SF / BW.
func SymbolDuration(sf types.SpreadingFactor, bw types.Bandwidth) time.Duration {
	tsym := math.Exp2(float64(sf)) / float64(bw)
	return time.Duration(tsym * float64(time.Second))
}

// PayloadSymbolCount computes the number of payload symbols, per spec §4.1:
// `N_payload = 8 + max(ceil((8*L - 4*SF + 28 + 16*CRC - 20*IH) / (4*(SF-2*DE))), 0) * (CR+4)`.
// IH (implicit header) is 1 when the header is disabled, 0 when explicit.
func PayloadSymbolCount(p AirtimeParams) int {
	sf := float64(p.SF)
	cr := float64(p.CodingRate)

	deNum := 8.0*float64(p.PayloadBytes) - 4.0*sf + 28.0
	if p.CRCEnabled {
		deNum += 16.0
	}
	if !p.HeaderEnabled {
		deNum -= 20.0 // implicit header (IH=1)
	}

	de := 0.0
	if p.LowDataRateOptim {
		de = 2.0
	}
	denom := 4.0 * (sf - de)

	ceilTerm := math.Ceil(deNum/denom) * (cr + 4.0)
	nPayload := 8.0 + math.Max(ceilTerm, 0.0)
	return int(nPayload)
}

// Airtime computes the total on-air time of a frame with the given
// parameters: preamble + payload symbols, each Tsym long.
func Airtime(p AirtimeParams) time.Duration {
	tsym := SymbolDuration(p.SF, p.BW)
	preambleSymbols := float64(p.PreambleSymbols) + 4.25
	payloadSymbols := float64(PayloadSymbolCount(p))
	totalSymbols := preambleSymbols + payloadSymbols
	return time.Duration(float64(tsym) * totalSymbols)
}

// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in phy.go.

package phy

import (
	"math"

	"github.com/pkg/errors"
)

// ErrDomain is the sentinel a caller can match with errors.Is to recognize
// a domain error raised by this package (e.g. a non-positive distance).
var ErrDomain = errors.New("phy: domain error")

// PathLossModel names one of the supported propagation models.
type PathLossModel uint8

const (
	PathLossLogNormal PathLossModel = iota
	PathLossHataOkumura
	PathLossOulu
)

// PathLossParams groups the parameters a path-loss model is evaluated with.
// Not every field is used by every model.
type PathLossParams struct {
	Model PathLossModel

	// Common.
	FrequencyMHz float64
	DistanceM    float64

	// Log-normal shadowing model: PL = PL0 + 10*n*log10(d/d0) + Xsigma.
	PL0           DbValue // reference path loss at d0, dB
	D0Meters      float64
	PathLossExp   float64 // n
	ShadowingDb   DbValue // Xsigma sample, drawn by caller from prng.NextShadowing
	HasShadowing  bool

	// Oulu: PL = B + 10*n*log10(d/d0) - G_antenna. AntennaGainDb is the
	// receiver antenna gain subtracted from the base loss.
	AntennaGainDb DbValue
}

// PathLoss returns the path loss in dB (always >= 0) for the given
// parameters. It returns ErrDomain, wrapped with the offending distance, if
// p.DistanceM <= 0: a transmitter cannot be co-located with the receiver.
func PathLoss(p PathLossParams) (DbValue, error) {
	if p.DistanceM <= 0 {
		return 0, errors.Wrapf(ErrDomain, "path_loss: non-positive distance %g", p.DistanceM)
	}
	switch p.Model {
	case PathLossHataOkumura:
		return hataOkumura(p), nil
	case PathLossOulu:
		return oulu(p), nil
	default:
		return logNormal(p), nil
	}
}

func logNormal(p PathLossParams) DbValue {
	d := p.DistanceM
	if d < p.D0Meters {
		d = p.D0Meters
	}
	pl := p.PL0 + 10.0*p.PathLossExp*math.Log10(d/p.D0Meters)
	if p.HasShadowing {
		pl += p.ShadowingDb
	}
	return math.Max(pl, 0.0)
}

// hataOkumuraK1/hataOkumuraK2 are the reference simulator's simplified
// Hata-Okumura constants, spec §4.1: `PL = K1 + K2*log10(d_km)`.
const (
	hataOkumuraK1 = 127.5
	hataOkumuraK2 = 35.2
)

func hataOkumura(p PathLossParams) DbValue {
	dKm := p.DistanceM / 1000.0
	pl := hataOkumuraK1 + hataOkumuraK2*math.Log10(dKm)
	return math.Max(pl, 0.0)
}

// oulu constants, spec §4.1: `PL = B + 10*n*log10(d/d0) - G_antenna`.
const (
	ouluB  = 128.95
	ouluN  = 2.32
	ouluD0 = 1000.0
)

func oulu(p PathLossParams) DbValue {
	pl := ouluB + 10.0*ouluN*math.Log10(p.DistanceM/ouluD0) - p.AntennaGainDb
	return math.Max(pl, 0.0)
}

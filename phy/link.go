// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in phy.go.

package phy

import "math"

// EnergyDetectionDbm is the default energy-detection threshold: a gateway
// never even attempts to synchronize on a frame arriving below this power,
// independent of the (typically lower) demodulation sensitivity threshold.
const EnergyDetectionDbm DbValue = -90.0

// Rssi computes received signal strength: txPower - pathLoss, both in dB.
func Rssi(txPowerDbm DbValue, pathLossDb DbValue) DbValue {
	return txPowerDbm - pathLossDb
}

// Snr computes signal-to-noise ratio: rssi - noiseFloor, both in dB.
func Snr(rssiDbm, noiseFloorDbm DbValue) DbValue {
	return rssiDbm - noiseFloorDbm
}

// Snir computes signal-to-noise-and-interference ratio, where interference
// is the combined co-channel power from other concurrent transmissions
// (already summed via AddPowersDbm by the caller) plus the noise floor.
func Snir(rssiDbm, noiseFloorDbm, interferenceDbm DbValue) DbValue {
	denom := AddPowersDbm(noiseFloorDbm, interferenceDbm)
	return rssiDbm - denom
}

// floorLinearWatts bounds SubtractPowerDbm's result away from log10(0) when
// a reception accumulated no measurable interference beyond its own signal.
const floorLinearWatts = 1e-20

// SubtractPowerDbm returns, in dB, the power that remains after removing
// subtrahendDbm from totalDbm (both linear powers expressed in dB): used to
// recover the interference-only contribution from a gateway slot's combined
// signal+interference accumulator.
func SubtractPowerDbm(totalDbm, subtrahendDbm DbValue) DbValue {
	totalLin := math.Pow(10, totalDbm/10.0)
	subLin := math.Pow(10, subtrahendDbm/10.0)
	remaining := totalLin - subLin
	if remaining < floorLinearWatts {
		remaining = floorLinearWatts
	}
	return 10.0 * math.Log10(remaining)
}

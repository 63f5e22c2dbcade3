// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in phy.go.

package phy

import (
	"math"

	"github.com/rot226/loraflexsim/types"
)

// sensitivityDbm is indexed [BW][SF-7], holding the standard LoRa receiver
// sensitivity table (dBm), per Semtech SX1272/SX1276 datasheets.
var sensitivityDbm = map[types.Bandwidth][6]DbValue{
	types.BW125kHz: {-123, -126, -129, -132, -133, -136},
	types.BW250kHz: {-120, -123, -126, -129, -130, -133},
	types.BW500kHz: {-117, -120, -123, -126, -127, -130},
}

// defaultSensitivityDbm is returned for any (SF, BW) cell not present in the
// table (unknown bandwidth, or an SF outside 7..12), per spec.
const defaultSensitivityDbm DbValue = -110.0

// Sensitivity returns the receiver sensitivity (dBm) for a given SF/BW pair,
// or defaultSensitivityDbm if the cell is not in the table.
func Sensitivity(sf types.SpreadingFactor, bw types.Bandwidth) DbValue {
	row, ok := sensitivityDbm[bw]
	if !ok {
		return defaultSensitivityDbm
	}
	idx := int(sf) - int(types.SF7)
	if idx < 0 || idx > 5 {
		return defaultSensitivityDbm
	}
	return row[idx]
}

// NoiseFloor returns the thermal noise floor (dBm) for a channel of
// bandwidth bw and the given receiver noise figure (dB): N = -174 +
// 10*log10(BW) + NF.
func NoiseFloor(bw types.Bandwidth, noiseFigureDb DbValue) DbValue {
	return -174.0 + 10.0*math.Log10(float64(bw)) + noiseFigureDb
}

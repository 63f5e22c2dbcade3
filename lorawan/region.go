// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in frame.go.

package lorawan

import "github.com/rot226/loraflexsim/types"

// DataRateDef resolves a region's DataRate index into an SF/BW pair.
type DataRateDef struct {
	SF types.SpreadingFactor
	BW types.Bandwidth
}

// ChannelDef is one default channel of a region's channel plan.
type ChannelDef struct {
	FrequencyHz uint32
	MinDR       types.DataRate
	MaxDR       types.DataRate
}

// Region bundles everything an engine needs to place a node's uplinks/
// downlinks on real, regionally valid channels and data rates.
type Region struct {
	ID               types.RegionID
	DefaultChannels  []ChannelDef
	DataRates        []DataRateDef
	MaxPayloadPerDR  map[types.DataRate]int
	RX1DROffsetTable map[types.DataRate]map[uint8]types.DataRate
	DefaultRX2DR     types.DataRate
	DefaultRX2FreqHz uint32
}

// DataRateDef returns the SF/BW pair for dr, or the zero value if dr is out
// of range for this region.
func (r Region) DataRateDef(dr types.DataRate) (DataRateDef, bool) {
	if int(dr) >= len(r.DataRates) {
		return DataRateDef{}, false
	}
	return r.DataRates[dr], true
}

// DRForSF returns the first DataRate index in this region's table whose SF
// matches sf (preferring the narrowest bandwidth entry for it), used to map
// a node's current SF back to a region DR for RX1 offset lookups.
func (r Region) DRForSF(sf types.SpreadingFactor) (types.DataRate, bool) {
	for i, def := range r.DataRates {
		if def.SF == sf {
			return types.DataRate(i), true
		}
	}
	return 0, false
}

// RX1DataRate resolves the RX1 data rate for an uplink sent at uplinkDR with
// the given RX1DROffset.
func (r Region) RX1DataRate(uplinkDR types.DataRate, offset uint8) types.DataRate {
	byOffset, ok := r.RX1DROffsetTable[uplinkDR]
	if !ok {
		return uplinkDR
	}
	dr, ok := byOffset[offset]
	if !ok {
		return uplinkDR
	}
	return dr
}

// Regions holds one entry per supported RegionID; PresetFor looks entries up.
var Regions = map[types.RegionID]Region{
	types.RegionEU868: eu868,
	types.RegionUS915: us915,
	types.RegionAU915: au915,
	types.RegionAS923: as923,
	types.RegionIN865: in865,
	types.RegionKR920: kr920,
}

// PresetFor returns the Region for id, defaulting to EU868 if id is unknown.
func PresetFor(id types.RegionID) Region {
	if r, ok := Regions[id]; ok {
		return r
	}
	return eu868
}

var eu868 = Region{
	ID: types.RegionEU868,
	DefaultChannels: []ChannelDef{
		{FrequencyHz: 868100000, MinDR: 0, MaxDR: 5},
		{FrequencyHz: 868300000, MinDR: 0, MaxDR: 5},
		{FrequencyHz: 868500000, MinDR: 0, MaxDR: 5},
	},
	DataRates: []DataRateDef{
		{SF: types.SF12, BW: types.BW125kHz}, // DR0
		{SF: types.SF11, BW: types.BW125kHz}, // DR1
		{SF: types.SF10, BW: types.BW125kHz}, // DR2
		{SF: types.SF9, BW: types.BW125kHz},  // DR3
		{SF: types.SF8, BW: types.BW125kHz},  // DR4
		{SF: types.SF7, BW: types.BW125kHz},  // DR5
		{SF: types.SF7, BW: types.BW250kHz},  // DR6
	},
	MaxPayloadPerDR: map[types.DataRate]int{0: 51, 1: 51, 2: 51, 3: 115, 4: 242, 5: 242, 6: 242},
	RX1DROffsetTable: map[types.DataRate]map[uint8]types.DataRate{
		0: {0: 0, 1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		1: {0: 1, 1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		2: {0: 2, 1: 1, 2: 0, 3: 0, 4: 0, 5: 0},
		3: {0: 3, 1: 2, 2: 1, 3: 0, 4: 0, 5: 0},
		4: {0: 4, 1: 3, 2: 2, 3: 1, 4: 0, 5: 0},
		5: {0: 5, 1: 4, 2: 3, 3: 2, 4: 1, 5: 0},
	},
	DefaultRX2DR:     0,
	DefaultRX2FreqHz: 869525000,
}

var us915 = Region{
	ID: types.RegionUS915,
	DataRates: []DataRateDef{
		{SF: types.SF10, BW: types.BW125kHz}, // DR0
		{SF: types.SF9, BW: types.BW125kHz},  // DR1
		{SF: types.SF8, BW: types.BW125kHz},  // DR2
		{SF: types.SF7, BW: types.BW125kHz},  // DR3
		{SF: types.SF8, BW: types.BW500kHz},  // DR4
	},
	MaxPayloadPerDR: map[types.DataRate]int{0: 11, 1: 53, 2: 125, 3: 242, 4: 242},
	RX1DROffsetTable: map[types.DataRate]map[uint8]types.DataRate{
		0: {0: 10, 1: 9, 2: 8, 3: 8},
		1: {0: 11, 1: 10, 2: 9, 3: 8},
		2: {0: 12, 1: 11, 2: 10, 3: 9},
		3: {0: 13, 1: 12, 2: 11, 3: 10},
	},
	DefaultRX2DR:     8,
	DefaultRX2FreqHz: 923300000,
}

var au915 = Region{
	ID: types.RegionAU915,
	DataRates: []DataRateDef{
		{SF: types.SF12, BW: types.BW125kHz}, // DR0
		{SF: types.SF11, BW: types.BW125kHz}, // DR1
		{SF: types.SF10, BW: types.BW125kHz}, // DR2
		{SF: types.SF9, BW: types.BW125kHz},  // DR3
		{SF: types.SF8, BW: types.BW125kHz},  // DR4
		{SF: types.SF7, BW: types.BW125kHz},  // DR5
		{SF: types.SF8, BW: types.BW500kHz},  // DR6
	},
	MaxPayloadPerDR:  map[types.DataRate]int{0: 51, 1: 51, 2: 51, 3: 115, 4: 242, 5: 242, 6: 242},
	DefaultRX2DR:     8,
	DefaultRX2FreqHz: 923300000,
}

var as923 = Region{
	ID: types.RegionAS923,
	DefaultChannels: []ChannelDef{
		{FrequencyHz: 923200000, MinDR: 0, MaxDR: 5},
		{FrequencyHz: 923400000, MinDR: 0, MaxDR: 5},
	},
	DataRates: []DataRateDef{
		{SF: types.SF12, BW: types.BW125kHz},
		{SF: types.SF11, BW: types.BW125kHz},
		{SF: types.SF10, BW: types.BW125kHz},
		{SF: types.SF9, BW: types.BW125kHz},
		{SF: types.SF8, BW: types.BW125kHz},
		{SF: types.SF7, BW: types.BW125kHz},
		{SF: types.SF7, BW: types.BW250kHz},
	},
	MaxPayloadPerDR:  map[types.DataRate]int{0: 51, 1: 51, 2: 51, 3: 115, 4: 222, 5: 222, 6: 222},
	DefaultRX2DR:     2,
	DefaultRX2FreqHz: 923200000,
}

var in865 = Region{
	ID: types.RegionIN865,
	DefaultChannels: []ChannelDef{
		{FrequencyHz: 865062500, MinDR: 0, MaxDR: 5},
		{FrequencyHz: 865402500, MinDR: 0, MaxDR: 5},
		{FrequencyHz: 865985000, MinDR: 0, MaxDR: 5},
	},
	DataRates: []DataRateDef{
		{SF: types.SF12, BW: types.BW125kHz},
		{SF: types.SF11, BW: types.BW125kHz},
		{SF: types.SF10, BW: types.BW125kHz},
		{SF: types.SF9, BW: types.BW125kHz},
		{SF: types.SF8, BW: types.BW125kHz},
		{SF: types.SF7, BW: types.BW125kHz},
	},
	MaxPayloadPerDR:  map[types.DataRate]int{0: 51, 1: 51, 2: 51, 3: 115, 4: 242, 5: 242},
	DefaultRX2DR:     2,
	DefaultRX2FreqHz: 866550000,
}

var kr920 = Region{
	ID: types.RegionKR920,
	DefaultChannels: []ChannelDef{
		{FrequencyHz: 922100000, MinDR: 0, MaxDR: 5},
		{FrequencyHz: 922300000, MinDR: 0, MaxDR: 5},
		{FrequencyHz: 922500000, MinDR: 0, MaxDR: 5},
	},
	DataRates: []DataRateDef{
		{SF: types.SF12, BW: types.BW125kHz},
		{SF: types.SF11, BW: types.BW125kHz},
		{SF: types.SF10, BW: types.BW125kHz},
		{SF: types.SF9, BW: types.BW125kHz},
		{SF: types.SF8, BW: types.BW125kHz},
		{SF: types.SF7, BW: types.BW125kHz},
	},
	MaxPayloadPerDR:  map[types.DataRate]int{0: 51, 1: 51, 2: 51, 3: 115, 4: 242, 5: 242},
	DefaultRX2DR:     0,
	DefaultRX2FreqHz: 921900000,
}

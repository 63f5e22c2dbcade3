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

// Package scenario loads the declarative run configuration: node/gateway
// placement, region, traffic model and radio parameters, from YAML, plus a
// parser for the reference simulator's .ini-style format for
// cross-validation runs.
package scenario

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rot226/loraflexsim/networkserver"
	"github.com/rot226/loraflexsim/phy"
	"github.com/rot226/loraflexsim/types"
)

const (
	DefaultRegion        = types.RegionEU868
	DefaultRootSeed      = int64(1)
	DefaultDurationNanos = uint64(24 * 3600 * 1e9) // 24 simulated hours
	DefaultUnitMeters    = 1.0
)

// NodeSpec describes one end-device to place in the run.
type NodeSpec struct {
	Count          int     `yaml:"count"`
	Class          string  `yaml:"class"` // "A", "B", or "C"
	X              float64 `yaml:"x"`
	Y              float64 `yaml:"y"`
	RadiusMeters   float64 `yaml:"radius_meters"` // random placement radius around (X,Y), if > 0
	PeriodSec      float64 `yaml:"period_sec"`    // mean Poisson uplink period
	PayloadBytes   int     `yaml:"payload_bytes"`
	ADREnabled     bool    `yaml:"adr_enabled"`
	PacketsPerNode uint32  `yaml:"packets_per_node"` // packet budget per node (spec §6); 0 = unlimited, bounded only by duration
	BatteryJoules  float64 `yaml:"battery_joules"`   // optional battery capacity; 0 = unlimited
}

// GatewaySpec describes one gateway to place in the run.
type GatewaySpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Scenario is the top-level declarative run configuration.
type Scenario struct {
	Region        string        `yaml:"region"`
	RootSeed      int64         `yaml:"root_seed"`
	DurationNanos uint64        `yaml:"duration_nanos"`
	UnitMeters    float64       `yaml:"unit_meters"`
	PathLossModel string        `yaml:"path_loss_model"` // "log_normal", "hata_okumura", "oulu"
	PERModel      string        `yaml:"per_model"`        // "logistic", "croce"
	NoiseFigureDb float64       `yaml:"noise_figure_db"`
	ADRMethod     string        `yaml:"adr_method"` // "avg" or "max"
	Nodes         []NodeSpec    `yaml:"nodes"`
	Gateways      []GatewaySpec `yaml:"gateways"`

	// RX1DelayNanos/RX1DurationNanos/RX2DelayNanos follow LoRaWAN's
	// fixed-delay class A downlink contract (spec §4.6); RX2DelayNanos
	// defaults to RX1DelayNanos + 1s, per the region RX2 parameter rule.
	RX1DelayNanos    uint64 `yaml:"rx1_delay_nanos"`
	RX1DurationNanos uint64 `yaml:"rx1_duration_nanos"`
	RX2DelayNanos    uint64 `yaml:"rx2_delay_nanos"`

	// DutyCycleFraction is the regulatory cap on transmit time per sub-band
	// (e.g. 0.01 for EU868's 1% g1 band); DutyCycleWindowNanos is the
	// sliding observation window it is computed over (spec §3 duty-cycle
	// invariant).
	DutyCycleFraction    float64 `yaml:"duty_cycle_fraction"`
	DutyCycleWindowNanos uint64  `yaml:"duty_cycle_window_nanos"`

	// BeaconPeriodNanos/PingSlotPeriodNanos drive class B scheduling: the
	// network broadcasts a beacon every BeaconPeriodNanos, and each class B
	// node owns a ping slot spaced PingSlotPeriodNanos apart within that
	// period (spec §4.4 Class B / §4.6 Class B downlink scheduling).
	BeaconPeriodNanos   uint64 `yaml:"beacon_period_nanos"`
	PingSlotPeriodNanos uint64 `yaml:"ping_slot_period_nanos"`

	// NetworkLatencyNanos/ServerProcessingDelayNanos are the two budgets
	// spec §4.6 applies between a gateway's TX_END and a downlink decision
	// being ready; see ProcessingDelayNanos.
	NetworkLatencyNanos        uint64 `yaml:"network_latency_nanos"`
	ServerProcessingDelayNanos uint64 `yaml:"server_processing_delay_nanos"`
}

// ProcessingDelayNanos returns the configured network-latency plus
// server-processing delay applied between a gateway's TX_END and a
// downlink decision being ready (spec §4.6).
func (s *Scenario) ProcessingDelayNanos() uint64 {
	return s.NetworkLatencyNanos + s.ServerProcessingDelayNanos
}

// DefaultScenario returns a minimal, reproducible scenario, following the
// teacher's DefaultConfig convention of providing sane zero-effort defaults.
func DefaultScenario() *Scenario {
	return &Scenario{
		Region:           DefaultRegion.String(),
		RootSeed:         DefaultRootSeed,
		DurationNanos:    DefaultDurationNanos,
		UnitMeters:       DefaultUnitMeters,
		PathLossModel:    "log_normal",
		PERModel:         "logistic",
		NoiseFigureDb:    6.0,
		ADRMethod:        "avg",
		RX1DelayNanos:    1_000_000_000,
		RX1DurationNanos: 2_000_000_000,
		RX2DelayNanos:    2_000_000_000,

		DutyCycleFraction:    0.01,
		DutyCycleWindowNanos: 3600 * 1_000_000_000,

		BeaconPeriodNanos:   128 * 1_000_000_000,
		PingSlotPeriodNanos: 1_000_000_000,

		NetworkLatencyNanos:        networkserver.DefaultNetworkLatencyNanos,
		ServerProcessingDelayNanos: networkserver.DefaultServerProcessingDelayNanos,
	}
}

// Load reads and parses a YAML scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario: reading %s", path)
	}
	s := DefaultScenario()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "scenario: parsing %s", path)
	}
	return s, nil
}

// RegionID resolves the scenario's Region string into a types.RegionID,
// defaulting to EU868 for an unrecognized or empty value.
func (s *Scenario) RegionID() types.RegionID {
	switch s.Region {
	case "US915":
		return types.RegionUS915
	case "AU915":
		return types.RegionAU915
	case "AS923":
		return types.RegionAS923
	case "IN865":
		return types.RegionIN865
	case "KR920":
		return types.RegionKR920
	default:
		return types.RegionEU868
	}
}

// PERModelEnum resolves the scenario's PERModel string into a phy.PERModel,
// defaulting to the logistic reference-mode model.
func (s *Scenario) PERModelEnum() phy.PERModel {
	if s.PERModel == "croce" {
		return phy.PERCroce
	}
	return phy.PERLogistic
}

// ADRMethodEnum resolves the scenario's ADRMethod string into a
// networkserver.ADRMethod, defaulting to "avg".
func (s *Scenario) ADRMethodEnum() networkserver.ADRMethod {
	if s.ADRMethod == "max" {
		return networkserver.ADRMax
	}
	return networkserver.ADRAvg
}

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

package main

import (
	"flag"
	"os"

	"github.com/pkg/errors"

	"github.com/rot226/loraflexsim/logger"
	"github.com/rot226/loraflexsim/metrics"
	"github.com/rot226/loraflexsim/scenario"
	"github.com/rot226/loraflexsim/simulator"
	"github.com/rot226/loraflexsim/types"
)

type mainArgs struct {
	ScenarioPath string
	LogLevel     string
	NodesOut     string
	NetworkOut   string
	TracePath    string
}

func parseArgs() mainArgs {
	var a mainArgs
	flag.StringVar(&a.ScenarioPath, "scenario", "", "path to a YAML scenario file (required)")
	flag.StringVar(&a.LogLevel, "log", "info", "set logging level")
	flag.StringVar(&a.NodesOut, "nodes-out", "nodes.txt", "path to write the per-node result summary")
	flag.StringVar(&a.NetworkOut, "network-out", "network.txt", "path to write the network history")
	flag.StringVar(&a.TracePath, "trace-out", "", "optional path to write a newline-delimited JSON event trace")
	flag.Parse()
	return a
}

func run(a mainArgs) error {
	logger.SetLevel(logger.ParseLevel(a.LogLevel))

	if a.ScenarioPath == "" {
		return errors.New("loraflexsim: -scenario is required")
	}

	cfg, err := scenario.Load(a.ScenarioPath)
	if err != nil {
		return errors.Wrap(err, "loraflexsim: loading scenario")
	}

	sim := simulator.New(cfg)
	if a.TracePath != "" {
		tr, err := metrics.NewTracer(a.TracePath)
		if err != nil {
			return errors.Wrap(err, "loraflexsim: opening trace file")
		}
		defer tr.Close()
		sim.Tracer = tr
	}
	for i, gw := range cfg.Gateways {
		sim.AddGateway(types.GatewayId(i), gw.X, gw.Y)
	}
	for _, spec := range cfg.Nodes {
		class := parseClass(spec.Class)
		for i := 0; i < spec.Count; i++ {
			n := sim.AddNodeAround(class, spec.X, spec.Y, spec.RadiusMeters)
			if spec.PayloadBytes > 0 {
				n.PayloadBytes = spec.PayloadBytes
			}
			n.ADR.Enabled = spec.ADREnabled
			n.PacketBudget = spec.PacketsPerNode
			n.BatteryCapacityJoules = spec.BatteryJoules
			sim.ScheduleArrival(n.Id, spec.PeriodSec)
		}
	}

	sim.Run(cfg.DurationNanos)

	if err := sim.Report.WriteText(a.NodesOut, a.NetworkOut); err != nil {
		return errors.Wrap(err, "loraflexsim: writing results")
	}
	logger.Infof("run complete: network PDR=%.3f", sim.Report.NetworkPDR())
	return nil
}

func parseClass(s string) types.DeviceClass {
	switch s {
	case "B":
		return types.ClassB
	case "C":
		return types.ClassC
	default:
		return types.ClassA
	}
}

func main() {
	a := parseArgs()
	if err := run(a); err != nil {
		logger.Errorf("%+v", err)
		os.Exit(1)
	}
}

// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in trace.go.

package metrics

import (
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/rot226/loraflexsim/types"
)

// NodeStats accumulates one node's delivery and energy outcomes across a run.
type NodeStats struct {
	Sent            uint64
	Delivered       uint64
	CollisionLost   uint64
	NoiseLost       uint64
	BatteryDepleted uint64
	EnergyJoules    float64
}

// PDR is the node's packet delivery ratio, 0 if it never sent anything.
func (s *NodeStats) PDR() float64 {
	if s.Sent == 0 {
		return 0
	}
	return float64(s.Delivered) / float64(s.Sent)
}

// NetworkSnapshot is one point of the network-wide history, taken
// periodically over the run, following the same snapshot-series shape the
// teacher's energy analyser keeps for its network history.
type NetworkSnapshot struct {
	TimestampNanos  uint64
	AvgPDR          float64
	AvgEnergyJoules float64
}

// Report aggregates a single run's statistics, identified by a RunID so it
// can be cross-referenced against the event trace that produced it.
type Report struct {
	RunID   uuid.UUID
	Nodes   map[types.NodeId]*NodeStats
	History []NetworkSnapshot
}

// NewReport creates an empty report with a fresh run identifier.
func NewReport() *Report {
	return &Report{
		RunID: uuid.New(),
		Nodes: make(map[types.NodeId]*NodeStats),
	}
}

func (r *Report) node(id types.NodeId) *NodeStats {
	s, ok := r.Nodes[id]
	if !ok {
		s = &NodeStats{}
		r.Nodes[id] = s
	}
	return s
}

// RecordSent counts one uplink attempt by nodeId.
func (r *Report) RecordSent(nodeId types.NodeId) {
	r.node(nodeId).Sent++
}

// RecordDelivered counts one uplink successfully received by the server.
func (r *Report) RecordDelivered(nodeId types.NodeId) {
	r.node(nodeId).Delivered++
}

// RecordCollisionLost counts one uplink lost to a capture/collision event.
func (r *Report) RecordCollisionLost(nodeId types.NodeId) {
	r.node(nodeId).CollisionLost++
}

// RecordNoiseLost counts one uplink lost below the receiver's noise floor.
func (r *Report) RecordNoiseLost(nodeId types.NodeId) {
	r.node(nodeId).NoiseLost++
}

// RecordBatteryDepleted counts one uplink attempt the node silently skipped
// because its battery capacity (spec §3, §7 capacity-exceeded) was exhausted.
func (r *Report) RecordBatteryDepleted(nodeId types.NodeId) {
	r.node(nodeId).BatteryDepleted++
}

// AddEnergy accumulates energy spent by nodeId.
func (r *Report) AddEnergy(nodeId types.NodeId, joules float64) {
	r.node(nodeId).EnergyJoules += joules
}

// SetEnergy overwrites nodeId's recorded energy total, for callers (like an
// energy meter reconciliation at end-of-run) that hold the authoritative
// cumulative figure rather than a delta to add.
func (r *Report) SetEnergy(nodeId types.NodeId, joules float64) {
	r.node(nodeId).EnergyJoules = joules
}

// NetworkPDR is the delivered/sent ratio across all nodes combined.
func (r *Report) NetworkPDR() float64 {
	var sent, delivered uint64
	for _, s := range r.Nodes {
		sent += s.Sent
		delivered += s.Delivered
	}
	if sent == 0 {
		return 0
	}
	return float64(delivered) / float64(sent)
}

// Snapshot appends one NetworkSnapshot using the report's current
// aggregate state.
func (r *Report) Snapshot(timestampNanos uint64) {
	var totalEnergy float64
	for _, s := range r.Nodes {
		totalEnergy += s.EnergyJoules
	}
	avgEnergy := 0.0
	if len(r.Nodes) > 0 {
		avgEnergy = totalEnergy / float64(len(r.Nodes))
	}
	r.History = append(r.History, NetworkSnapshot{
		TimestampNanos:  timestampNanos,
		AvgPDR:          r.NetworkPDR(),
		AvgEnergyJoules: avgEnergy,
	})
}

// WriteText writes a tab-separated per-node summary and a network history
// file, in the same plain-text tabular style the teacher's energy analyser
// uses for its own result files.
func (r *Report) WriteText(nodesPath, networkPath string) error {
	fNodes, err := os.Create(nodesPath)
	if err != nil {
		return err
	}
	defer fNodes.Close()

	fmt.Fprintf(fNodes, "run_id\t%s\n", r.RunID)
	fmt.Fprintf(fNodes, "node\tsent\tdelivered\tcollision_lost\tnoise_lost\tbattery_depleted\tpdr\tenergy_joules\n")

	ids := make([]int, 0, len(r.Nodes))
	for id := range r.Nodes {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		s := r.Nodes[types.NodeId(id)]
		fmt.Fprintf(fNodes, "%d\t%d\t%d\t%d\t%d\t%d\t%f\t%f\n",
			id, s.Sent, s.Delivered, s.CollisionLost, s.NoiseLost, s.BatteryDepleted, s.PDR(), s.EnergyJoules)
	}

	fNetwork, err := os.Create(networkPath)
	if err != nil {
		return err
	}
	defer fNetwork.Close()

	fmt.Fprintf(fNetwork, "timestamp_ns\tavg_pdr\tavg_energy_joules\n")
	for _, snap := range r.History {
		fmt.Fprintf(fNetwork, "%d\t%f\t%f\n", snap.TimestampNanos, snap.AvgPDR, snap.AvgEnergyJoules)
	}
	return nil
}

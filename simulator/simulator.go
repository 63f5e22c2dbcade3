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

// Package simulator binds the scheduler, PHY, energy, LoRaWAN and
// network-server packages into one run: it owns the event loop, the
// per-node Poisson arrival planning, and the run's RNG stream bindings.
//
// Data flow for one uplink (spec §2): an KindArrival fires, the node's TX is
// planned (possibly deferred by duty-cycle or by an in-flight previous
// frame), a KindTxStart opens a reception slot at every gateway within
// energy-detection/sensitivity range, and at KindTxDone each gateway's
// capture decision and packet-error roll settle whether the frame was
// delivered. A delivered frame is deduplicated at the network server, folded
// into the per-gateway SNIR history, optionally triggers an ADR step, and
// (class A) schedules an RX1/RX2 downlink.
package simulator

import (
	"fmt"
	"math"

	"github.com/rot226/loraflexsim/energy"
	"github.com/rot226/loraflexsim/event"
	"github.com/rot226/loraflexsim/gateway"
	"github.com/rot226/loraflexsim/logger"
	"github.com/rot226/loraflexsim/lorawan"
	"github.com/rot226/loraflexsim/metrics"
	"github.com/rot226/loraflexsim/networkserver"
	"github.com/rot226/loraflexsim/node"
	"github.com/rot226/loraflexsim/phy"
	"github.com/rot226/loraflexsim/prng"
	"github.com/rot226/loraflexsim/scenario"
	"github.com/rot226/loraflexsim/scheduler"
	"github.com/rot226/loraflexsim/types"
)

// Ever mirrors the scheduler's open-ended horizon, re-exported so callers
// driving a Simulator don't need to import scheduler directly.
const Ever = scheduler.Ever

// txEpsilonNanos is the minimum gap inserted between the end of an
// in-flight transmission and a postponed arrival's actual TX time, per the
// "postpone only, never redraw" rule (spec §4.4 / Design Notes).
const txEpsilonNanos = 1

// Counters tallies the per-run event counts, in the same spirit as the
// teacher dispatcher's Counters block.
type Counters struct {
	ArrivalEvents   uint64
	TxStartEvents   uint64
	TxDoneEvents    uint64
	RxWindowEvents  uint64
	ServerEvents    uint64
	DownlinkEvents  uint64
	MissedDownlinks uint64
}

// gatewayReception pairs a gateway id with the reception slot it opened for
// an in-flight frame, so KindTxDone can close exactly the slots KindTxStart
// opened.
type gatewayReception struct {
	gwId types.GatewayId
	rec  *gateway.Reception
}

// txContext holds everything sampled once at KindTxStart that KindTxDone
// needs to finish the frame: the airtime/channel/SF are frozen here so the
// end-time invariant (spec §3) holds exactly, and the noise floor is
// memoized (`last_noise_dBm`, spec §3 invariants) so it is reused, not
// resampled, across every gateway's capture/PER decision for this packet.
type txContext struct {
	fcnt          uint16
	channel       int
	freqHz        uint32
	bw            types.Bandwidth
	sf            types.SpreadingFactor
	startNanos    uint64
	endNanos      uint64
	noiseFloorDbm phy.DbValue
	receptions    []gatewayReception
}

// Simulator owns one run's mutable state: the event queue, every node and
// gateway, the network server's shared caches, and the RNG streams feeding
// arrivals/shadowing/fading/mobility/OTAA draws.
type Simulator struct {
	CurTime uint64
	cfg     *scenario.Scenario
	region  lorawan.Region

	sched    *scheduler.Scheduler
	streams  *prng.Streams
	nodes    map[types.NodeId]*node.Node
	gateways map[types.GatewayId]*gateway.Gateway
	dedup    *networkserver.DedupCache
	inFlight map[types.NodeId]*txContext
	meters   map[types.NodeId]*energy.Meter

	Report   *metrics.Report
	Counters Counters
	Tracer   *metrics.Tracer // optional; set after New to record a per-event trace

	nextNodeId types.NodeId
}

// trace appends one event to the run's tracer, if one is attached. Tracer
// errors are logged rather than propagated: a failed trace write must never
// abort the run itself.
func (s *Simulator) trace(kind string, nodeId types.NodeId, gatewayId types.GatewayId, detail string) {
	if s.Tracer == nil {
		return
	}
	if err := s.Tracer.Record(metrics.TraceEvent{
		TimestampNanos: s.CurTime,
		Kind:           kind,
		NodeId:         nodeId,
		GatewayId:      gatewayId,
		Detail:         detail,
	}); err != nil {
		logger.Warnf("simulator: trace write: %v", err)
	}
}

// New creates a Simulator from a scenario, binding its RNG streams from
// scenario.RootSeed so the run is fully reproducible. A non-logistic PER
// model is honored, and a warning is logged once, here.
func New(cfg *scenario.Scenario) *Simulator {
	if cfg.PERModelEnum() != phy.PERLogistic {
		logger.Warnf("simulator: a non-logistic PER model is selected; it replaces the logistic reference-mode curve for this run")
	}
	return &Simulator{
		cfg:      cfg,
		region:   lorawan.PresetFor(cfg.RegionID()),
		sched:    scheduler.New(),
		streams:  prng.NewStreams(cfg.RootSeed),
		nodes:    make(map[types.NodeId]*node.Node),
		gateways: make(map[types.GatewayId]*gateway.Gateway),
		dedup:    networkserver.NewDedupCache(),
		inFlight: make(map[types.NodeId]*txContext),
		meters:   make(map[types.NodeId]*energy.Meter),
		Report:   metrics.NewReport(),
	}
}

// AddGateway places a gateway at (x, y) and returns its id.
func (s *Simulator) AddGateway(id types.GatewayId, x, y float64) *gateway.Gateway {
	gw := gateway.New(id, x, y)
	s.gateways[id] = gw
	return gw
}

// AddNode places a node at (x, y), deriving its DevAddr from the node id so
// every node in a run gets a distinct, deterministic address. Nodes are
// assigned channels round-robin across the region's default channel plan,
// per the scenario's "round-robin" assignment policy (spec §3 ChannelPlan).
func (s *Simulator) AddNode(class types.DeviceClass, x, y float64) *node.Node {
	id := s.nextNodeId
	s.nextNodeId++

	devAddr := lorawan.DevAddr{0, 0, byte(id >> 8), byte(id)}
	n := node.New(id, devAddr, class, s.cfg.RegionID(), x, y)
	if nCh := len(s.region.DefaultChannels); nCh > 0 {
		n.Channel = int(id) % nCh
	}
	if class == types.ClassB {
		if slots := s.beaconPeriodNanos() / s.pingSlotPeriodNanos(); slots > 0 {
			n.PingSlotIdx = uint8(uint64(id) % slots)
		}
	}
	s.nodes[id] = n
	s.meters[id] = energy.NewMeter(id, energy.DefaultProfile(), s.CurTime)
	return n
}

// AddNodeAround places a node uniformly at random inside the disc of the
// given radius around (cx, cy), drawing from the run's dedicated mobility
// stream so node placement never perturbs the arrivals/shadowing/fading
// sequences. A radiusMeters of 0 places the node exactly at (cx, cy).
func (s *Simulator) AddNodeAround(class types.DeviceClass, cx, cy, radiusMeters float64) *node.Node {
	if radiusMeters <= 0 {
		return s.AddNode(class, cx, cy)
	}
	r := radiusMeters * math.Sqrt(s.streams.NextMobility())
	theta := 2 * math.Pi * s.streams.NextMobility()
	return s.AddNode(class, cx+r*math.Cos(theta), cy+r*math.Sin(theta))
}

// ScheduleArrival books the next Poisson-spaced uplink arrival for a node,
// drawing its inter-arrival time from the run's dedicated arrivals stream so
// drawing extra shadowing/fading samples never perturbs the arrival
// sequence. meanPeriodSec is remembered on the node so the simulator can
// keep re-arming the arrival after every uplink without the caller having
// to track it.
func (s *Simulator) ScheduleArrival(nodeId types.NodeId, meanPeriodSec float64) {
	if n, ok := s.nodes[nodeId]; ok {
		n.PeriodSec = meanPeriodSec
	}
	s.scheduleNextArrival(nodeId, s.CurTime, meanPeriodSec)
}

func (s *Simulator) scheduleNextArrival(nodeId types.NodeId, fromNanos uint64, meanPeriodSec float64) {
	interval := s.streams.NextArrivalInterval(1.0 / meanPeriodSec)
	atNanos := fromNanos + uint64(interval*1e9)
	s.sched.Schedule(&event.Event{
		Timestamp: atNanos,
		Kind:      event.KindArrival,
		NodeId:    nodeId,
	})
}

// Step pops and dispatches the single next event, advancing CurTime to its
// timestamp. It returns false when the queue is empty.
func (s *Simulator) Step() bool {
	e := s.sched.Pop()
	if e == nil {
		return false
	}
	if e.Timestamp < s.CurTime {
		logger.Panicf("simulator: event %v scheduled in the past (cur=%d)", e.Kind, s.CurTime)
	}
	s.CurTime = e.Timestamp
	s.dispatch(e)
	return true
}

// Run drives events until the scheduler is empty or the next event's
// timestamp reaches untilNanos (use Ever to run until the queue drains
// naturally); events at or past untilNanos are left undispatched. It then
// reconciles every node's energy meter into the report.
func (s *Simulator) Run(untilNanos uint64) {
	for s.sched.Len() > 0 && s.sched.NextTimestamp() < untilNanos {
		if !s.Step() {
			break
		}
	}
	s.FinalizeEnergy()
}

// FinalizeEnergy reconciles every node's energy meter up to the current
// simulated time and folds the total into the report. Safe to call more
// than once; each call simply re-reconciles from the meter's last
// checkpoint.
func (s *Simulator) FinalizeEnergy() {
	for id, m := range s.meters {
		s.Report.SetEnergy(id, m.EnergyJoules(s.CurTime))
	}
}

func (s *Simulator) dispatch(e *event.Event) {
	switch e.Kind {
	case event.KindArrival:
		s.Counters.ArrivalEvents++
		s.onArrival(e)
	case event.KindTxStart:
		s.Counters.TxStartEvents++
		s.onTxStart(e)
	case event.KindTxDone:
		s.Counters.TxDoneEvents++
		s.onTxDone(e)
	case event.KindRxWindowOpen, event.KindRxWindowClose:
		s.Counters.RxWindowEvents++
	case event.KindServerProcessed:
		s.Counters.ServerEvents++
	case event.KindDownlinkReady:
		s.Counters.DownlinkEvents++
		s.onDownlinkReady(e)
	}
}

// onArrival plans the node's next TX: if the node is still transmitting its
// previous frame, the TX is postponed to LastTxEndNanos+epsilon rather than
// the draw being discarded (this is what keeps the arrival process
// Exp(1/mu) under backpressure, per the Design Notes). Duty-cycle budgets
// may defer it further. The next arrival is booked immediately, from the
// arrival time (not the deferred TX time), so the renewal process itself is
// never perturbed by scheduling delays downstream of it. A node stops
// renewing once its PacketBudget is exhausted, or immediately (without even
// this TX) once its battery capacity is (spec §3 battery invariant).
func (s *Simulator) onArrival(e *event.Event) {
	n, ok := s.nodes[e.NodeId]
	if !ok {
		return
	}

	if m, ok := s.meters[n.Id]; ok && n.BatteryDepleted(m.EnergyJoules(s.CurTime)) {
		// "ceases to transmit" (spec §3 battery invariant): no further
		// arrivals are booked for a node whose battery is exhausted.
		s.Report.RecordBatteryDepleted(n.Id)
		return
	}

	txAt := s.CurTime
	if n.InFlight && txAt < n.LastTxEndNanos {
		txAt = n.LastTxEndNanos + txEpsilonNanos
	}

	band := s.subBandFor(n.Channel)
	budget := n.SubBandBudget(band, s.dutyCycleFraction(), s.dutyCycleWindowNanos())
	airtimeNanos := uint64(phy.Airtime(s.airtimeParamsFor(n)))
	txAt = budget.NextAllowedTime(txAt, airtimeNanos)

	s.sched.Schedule(&event.Event{
		Timestamp: txAt,
		Kind:      event.KindTxStart,
		NodeId:    n.Id,
	})
	n.PacketsSent++

	if n.PeriodSec > 0 && (n.PacketBudget == 0 || n.PacketsSent < n.PacketBudget) {
		s.scheduleNextArrival(n.Id, s.CurTime, n.PeriodSec)
	}
}

// onTxStart freezes this frame's airtime/channel/SF, opens a reception slot
// at every gateway whose RSSI clears both the energy-detection and
// sensitivity thresholds (spec §4.3 start_reception steps 1-2), and books
// KindTxDone at the frame's exact end time.
func (s *Simulator) onTxStart(e *event.Event) {
	n, ok := s.nodes[e.NodeId]
	if !ok {
		return
	}

	fcnt := n.NextFCntUp()
	n.RegisterUplink()
	s.applyADRBackoff(n)
	n.InFlight = true

	params := s.airtimeParamsFor(n)
	airtime := phy.Airtime(params)
	endNanos := s.CurTime + uint64(airtime)
	n.LastTxEndNanos = endNanos

	band := s.subBandFor(n.Channel)
	n.SubBandBudget(band, s.dutyCycleFraction(), s.dutyCycleWindowNanos()).Consume(s.CurTime, uint64(airtime))

	chDef := s.channelDefFor(n.Channel)
	noiseFloorDbm := phy.NoiseFloor(params.BW, s.cfg.NoiseFigureDb)

	s.Report.RecordSent(n.Id)
	if m, ok := s.meters[n.Id]; ok {
		m.SetRadioState(types.RadioTx, s.CurTime)
	}

	ctx := &txContext{
		fcnt:          fcnt,
		channel:       n.Channel,
		freqHz:        chDef.FrequencyHz,
		bw:            params.BW,
		sf:            n.SF,
		startNanos:    s.CurTime,
		endNanos:      endNanos,
		noiseFloorDbm: noiseFloorDbm,
	}

	for _, gw := range s.gateways {
		rec, ok := s.tryStartReception(gw, n, chDef, endNanos)
		if !ok {
			continue
		}
		ctx.receptions = append(ctx.receptions, gatewayReception{gwId: gw.Id, rec: rec})
	}

	s.inFlight[n.Id] = ctx
	s.trace("tx_start", n.Id, 0, fmt.Sprintf("ch=%d sf=%d", n.Channel, n.SF))
	s.sched.Schedule(&event.Event{
		Timestamp: endNanos,
		Kind:      event.KindTxDone,
		NodeId:    n.Id,
	})
}

// applyADRBackoff drives the node-side half of the spec §4.4 ADR back-off
// schedule on every uplink: once ShouldEscalateADR fires (AdrAckLimit+
// AdrAckDelay uplinks with no server response), the node escalates its own
// power/SF without waiting for a LinkADRReq, then resets AdrAckCnt so it
// doesn't re-escalate on the very next uplink. NeedsADRAckReq (the earlier,
// non-escalating stage) is only traced: setting the wire ADRACKReq bit is
// the uplink-frame encoder's job, which this engine doesn't model below the
// MAC-command layer.
func (s *Simulator) applyADRBackoff(n *node.Node) {
	if !n.ADR.Enabled {
		return
	}
	if n.ShouldEscalateADR() {
		if n.EscalateADR() {
			s.trace("adr_escalate", n.Id, 0, fmt.Sprintf("sf=%d power=%.0f", n.SF, n.TxPowerDbm))
			n.AdrAckCnt = 0
		}
		return
	}
	if n.NeedsADRAckReq() {
		s.trace("adr_ack_req", n.Id, 0, "")
	}
}

// tryStartReception evaluates one gateway's reception of the frame
// currently starting at n, returning the opened slot (or ok=false if the
// gateway never attempts reception: below the energy-detection threshold or
// the demodulation sensitivity).
func (s *Simulator) tryStartReception(gw *gateway.Gateway, n *node.Node, chDef lorawan.ChannelDef, endNanos uint64) (*gateway.Reception, bool) {
	distance := gw.DistanceTo(n.X, n.Y)
	if distance <= 0 {
		distance = 0.01
	}
	plParams := s.PathLossParamsFor(distance, chDef.FrequencyHz)
	pathLossDb, err := phy.PathLoss(plParams)
	if err != nil {
		logger.Warnf("simulator: path loss for node %v at gateway %v: %v", n.Id, gw.Id, err)
		return nil, false
	}

	rssi := phy.Rssi(n.TxPowerDbm, pathLossDb)
	if rssi < phy.EnergyDetectionDbm {
		return nil, false
	}
	if rssi < phy.Sensitivity(n.SF, s.bandwidthFor(n)) {
		return nil, false
	}

	rec := &gateway.Reception{
		NodeId:     n.Id,
		StartNanos: s.CurTime,
		EndNanos:   endNanos,
		SF:         n.SF,
		BW:         s.bandwidthFor(n),
		RssiDbm:    rssi,
	}
	gw.StartReception(types.ChannelId(n.Channel), rec)
	return rec, true
}

// onTxDone closes every reception slot this frame opened, rolls each
// surviving gateway's packet-error rate, and - if at least one gateway
// decoded the frame - forwards it to the network server for dedup, ADR and
// downlink scheduling (spec §4.6).
func (s *Simulator) onTxDone(e *event.Event) {
	n, ok := s.nodes[e.NodeId]
	ctx := s.inFlight[e.NodeId]
	delete(s.inFlight, e.NodeId)
	if !ok || ctx == nil {
		return
	}
	n.InFlight = false
	if m, ok := s.meters[n.Id]; ok {
		idleState := types.RadioIdle
		if n.Class == types.ClassC {
			idleState = types.RadioListen
		}
		m.SetRadioState(idleState, s.CurTime)
	}

	if len(ctx.receptions) == 0 {
		s.Report.RecordNoiseLost(n.Id)
		return
	}

	anyCaptured := false
	anyDelivered := false
	var bestSnir phy.DbValue
	var bestGwId types.GatewayId

	perModel := s.cfg.PERModelEnum()
	for _, gr := range ctx.receptions {
		gw := s.gateways[gr.gwId]
		captured, accumDbm := gw.FinishReception(types.ChannelId(ctx.channel), gr.rec)
		if !captured {
			continue
		}
		anyCaptured = true

		interferenceDb := phy.SubtractPowerDbm(accumDbm, gr.rec.RssiDbm)
		snir := phy.Snir(gr.rec.RssiDbm, ctx.noiseFloorDbm, interferenceDb)
		per := phy.PacketErrorRate(perModel, ctx.sf, ctx.bw, snir, n.PayloadBytes)
		if s.streams.RollFrameLoss(per) {
			continue
		}

		gw.RecordSnir(n.Id, snir)
		if !anyDelivered || snir > bestSnir {
			bestSnir = snir
			bestGwId = gr.gwId
		}
		anyDelivered = true
	}

	switch {
	case anyDelivered:
		s.trace("tx_done", n.Id, bestGwId, "delivered")
		s.onUplinkDelivered(n, ctx, bestGwId)
	case anyCaptured:
		s.trace("tx_done", n.Id, 0, "noise_lost")
		s.Report.RecordNoiseLost(n.Id) // captured but lost to the noise/PER roll
	default:
		s.trace("tx_done", n.Id, 0, "collision_lost")
		s.Report.RecordCollisionLost(n.Id) // every gateway's capture decision went against it
	}
}

// onUplinkDelivered runs the network-server side of a successfully received
// uplink: dedup across gateways, ADR re-evaluation, and class-appropriate
// downlink scheduling.
func (s *Simulator) onUplinkDelivered(n *node.Node, ctx *txContext, bestGwId types.GatewayId) {
	if s.dedup.SeenBefore(n.DevAddr, ctx.fcnt) {
		return // already acted on via an earlier gateway's copy of this event
	}
	s.Report.RecordDelivered(n.Id)

	// LinkADRReq is not applied to the node directly: it rides the downlink
	// scheduled below and only takes effect once that downlink is actually
	// delivered (spec §4.6 "Emit LinkADRReq when SF or power changes" / §4.4
	// "Honors LinkADRReq"), same as every other MAC command.
	var pendingLinkADRReq lorawan.MACCommand
	var hasPendingLinkADRReq bool
	if n.ADR.Enabled {
		result := networkserver.ComputeADR(s.cfg.ADRMethodEnum(), s.Gateways(), n.Id, n.SF, n.TxPowerDbm)
		if result.Changed {
			pendingLinkADRReq, hasPendingLinkADRReq = networkserver.BuildLinkADRReq(result, s.region, allChannelsMask, 0, 1)
		}
	}

	decisionReadyNanos := ctx.endNanos + s.cfg.ProcessingDelayNanos()
	chDef := s.channelDefFor(ctx.channel)
	uplinkDR, _ := s.region.DRForSF(ctx.sf)

	var plan networkserver.DownlinkPlan
	switch n.Class {
	case types.ClassC:
		plan = networkserver.ScheduleClassC(decisionReadyNanos, uplinkDR, chDef.FrequencyHz)
	case types.ClassB:
		pingSlotOffset := uint64(n.PingSlotIdx) * s.pingSlotPeriodNanos()
		plan = networkserver.SchedulePingSlot(decisionReadyNanos, s.beaconPeriodNanos(), pingSlotOffset, uplinkDR, chDef.FrequencyHz)
	default:
		plan = networkserver.ScheduleClassA(
			ctx.endNanos, decisionReadyNanos,
			s.cfg.RX1DelayNanos, s.cfg.RX1DurationNanos, s.cfg.RX2DelayNanos,
			uplinkDR, s.region.DefaultRX2DR,
			chDef.FrequencyHz, s.region.DefaultRX2FreqHz,
		)
	}

	s.trace("downlink_scheduled", n.Id, 0, fmt.Sprintf("at=%d", plan.SendAtNanos))
	downlinkEvent := &event.Event{
		Timestamp: plan.SendAtNanos,
		Kind:      event.KindDownlinkReady,
		NodeId:    n.Id,
	}
	if hasPendingLinkADRReq {
		downlinkEvent.Payload = pendingLinkADRReq
	}
	s.sched.Schedule(downlinkEvent)
}

// allChannelsMask is the ChMask this engine's LinkADRReqs carry: every
// channel of the region's default plan enabled, since the channel plan
// itself doesn't vary mid-run.
const allChannelsMask uint16 = 0xFFFF

func (s *Simulator) onDownlinkReady(e *event.Event) {
	n, ok := s.nodes[e.NodeId]
	if !ok {
		return
	}
	if cmd, ok := e.Payload.(lorawan.MACCommand); ok {
		n.ApplyLinkADRReq(s.region, cmd)
		s.trace("link_adr_applied", n.Id, 0, fmt.Sprintf("sf=%d power=%.0f", n.SF, n.TxPowerDbm))
		return
	}
	n.RegisterDownlink()
}

// Gateways exposes the run's gateways for networkserver.ComputeADR callers.
func (s *Simulator) Gateways() []*gateway.Gateway {
	out := make([]*gateway.Gateway, 0, len(s.gateways))
	for _, gw := range s.gateways {
		out = append(out, gw)
	}
	return out
}

// Region returns the region preset this run is bound to.
func (s *Simulator) Region() lorawan.Region {
	return s.region
}

// PathLossParamsFor builds phy.PathLossParams for a node-gateway pair using
// the scenario's configured path-loss model, drawing a fresh shadowing
// sample from the run's dedicated shadowing stream (reference log-normal
// defaults: PL0=127.41dB, d0=40m, gamma=2.08, sigma=3.57dB, spec §4.1).
func (s *Simulator) PathLossParamsFor(distanceM float64, frequencyHz uint32) phy.PathLossParams {
	model := phy.PathLossLogNormal
	switch s.cfg.PathLossModel {
	case "hata_okumura":
		model = phy.PathLossHataOkumura
	case "oulu":
		model = phy.PathLossOulu
	}
	return phy.PathLossParams{
		Model:        model,
		DistanceM:    distanceM,
		FrequencyMHz: float64(frequencyHz) / 1e6,
		PL0:          127.41,
		D0Meters:     40,
		PathLossExp:  2.08,
		ShadowingDb:  s.streams.NextShadowing(3.57),
		HasShadowing: true,
	}
}

func (s *Simulator) channelDefFor(channel int) lorawan.ChannelDef {
	if len(s.region.DefaultChannels) == 0 {
		return lorawan.ChannelDef{FrequencyHz: 868100000}
	}
	return s.region.DefaultChannels[channel%len(s.region.DefaultChannels)]
}

func (s *Simulator) bandwidthFor(n *node.Node) types.Bandwidth {
	if def, ok := s.region.DRForSF(n.SF); ok {
		if drDef, ok := s.region.DataRateDef(def); ok {
			return drDef.BW
		}
	}
	return types.BW125kHz
}

func (s *Simulator) airtimeParamsFor(n *node.Node) phy.AirtimeParams {
	return phy.AirtimeParams{
		SF:               n.SF,
		BW:               s.bandwidthFor(n),
		CodingRate:       1,
		PreambleSymbols:  8,
		HeaderEnabled:    true,
		LowDataRateOptim: n.SF >= types.SF11,
		PayloadBytes:     n.PayloadBytes,
		CRCEnabled:       true,
	}
}

// subBandFor names the duty-cycle sub-band a channel index belongs to; a
// single band covers the whole plan (the scenario carries no per-channel
// band tag), matching the region presets
// that use one duty-cycle-regulated band across their default channels.
func (s *Simulator) subBandFor(channel int) node.SubBand {
	return node.SubBand(fmt.Sprintf("%s/g1", s.region.ID))
}

// dutyCycleFraction is the regulatory cap on transmit time per sub-band,
// taken from the scenario (defaulting to EU868's 1% g1 band, spec §3).
func (s *Simulator) dutyCycleFraction() float64 {
	if s.cfg.DutyCycleFraction > 0 {
		return s.cfg.DutyCycleFraction
	}
	return 0.01
}

// dutyCycleWindowNanos is the sliding observation window duty-cycle budgets
// roll over on, taken from the scenario (defaulting to one hour, matching
// the reference simulator's duty-cycle accounting granularity).
func (s *Simulator) dutyCycleWindowNanos() uint64 {
	if s.cfg.DutyCycleWindowNanos > 0 {
		return s.cfg.DutyCycleWindowNanos
	}
	return 3600 * 1_000_000_000
}

// beaconPeriodNanos is the class B beacon broadcast period (spec §4.4 Class
// B), defaulting to the reference simulator's 128s beacon interval.
func (s *Simulator) beaconPeriodNanos() uint64 {
	if s.cfg.BeaconPeriodNanos > 0 {
		return s.cfg.BeaconPeriodNanos
	}
	return 128 * 1_000_000_000
}

// pingSlotPeriodNanos is the spacing between consecutive class B ping slots
// within one beacon period (spec §4.4 Class B), defaulting to 1s.
func (s *Simulator) pingSlotPeriodNanos() uint64 {
	if s.cfg.PingSlotPeriodNanos > 0 {
		return s.cfg.PingSlotPeriodNanos
	}
	return 1_000_000_000
}

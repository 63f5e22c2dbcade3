package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rot226/loraflexsim/scenario"
	"github.com/rot226/loraflexsim/types"
)

func newTestSimulator() *Simulator {
	cfg := scenario.DefaultScenario()
	cfg.RootSeed = 7
	return New(cfg)
}

func TestAddNodeAssignsDistinctIds(t *testing.T) {
	s := newTestSimulator()
	n1 := s.AddNode(types.ClassA, 0, 0)
	n2 := s.AddNode(types.ClassA, 10, 10)
	assert.NotEqual(t, n1.Id, n2.Id)
}

func TestScheduleArrivalAndStepAdvancesTime(t *testing.T) {
	s := newTestSimulator()
	n := s.AddNode(types.ClassA, 0, 0)
	s.ScheduleArrival(n.Id, 60.0)

	require.True(t, s.Step())
	assert.Equal(t, uint64(1), s.Counters.ArrivalEvents)
	assert.Greater(t, s.CurTime, uint64(0))

	require.True(t, s.Step()) // the TxStart the arrival booked at the same timestamp
	assert.Equal(t, uint64(1), s.Report.Nodes[n.Id].Sent)
}

func TestRunStopsAtTimeLimit(t *testing.T) {
	s := newTestSimulator()
	n := s.AddNode(types.ClassA, 0, 0)
	s.ScheduleArrival(n.Id, 60.0)

	s.Run(1) // essentially zero budget: the first arrival is scheduled well past t=1
	assert.Equal(t, uint64(0), s.Counters.ArrivalEvents)
}

func TestRunDrainsQueueWhenGivenEver(t *testing.T) {
	s := newTestSimulator()
	n := s.AddNode(types.ClassA, 0, 0)
	n.PacketBudget = 1 // bound the Poisson renewal so the queue actually drains
	s.ScheduleArrival(n.Id, 60.0)

	s.Run(Ever)
	assert.Equal(t, uint64(1), s.Counters.ArrivalEvents)
}

func TestPathLossParamsForUsesConfiguredModel(t *testing.T) {
	s := newTestSimulator()
	p := s.PathLossParamsFor(1000, 868100000)
	assert.True(t, p.HasShadowing)
}

func TestGatewaysReturnsAddedGateways(t *testing.T) {
	s := newTestSimulator()
	s.AddGateway(1, 0, 0)
	s.AddGateway(2, 100, 100)
	assert.Len(t, s.Gateways(), 2)
}

func TestEndToEndUplinkIsDeliveredAtCloseRange(t *testing.T) {
	s := newTestSimulator()
	s.AddGateway(1, 0, 0)
	n := s.AddNode(types.ClassA, 50, 0) // well within range at default EU868 TX power
	n.PacketBudget = 1
	s.ScheduleArrival(n.Id, 1000.0)

	s.Run(Ever)

	require.Equal(t, uint64(1), s.Report.Nodes[n.Id].Sent)
	assert.Equal(t, uint64(1), s.Report.Nodes[n.Id].Delivered)
	assert.Equal(t, uint64(1), s.Counters.TxStartEvents)
	assert.Equal(t, uint64(1), s.Counters.TxDoneEvents)
	assert.Equal(t, uint64(1), s.Counters.DownlinkEvents)
	assert.Greater(t, s.Report.Nodes[n.Id].EnergyJoules, 0.0)
}

func TestEndToEndUplinkIsLostAtExtremeRange(t *testing.T) {
	s := newTestSimulator()
	s.AddGateway(1, 0, 0)
	n := s.AddNode(types.ClassA, 5_000_000, 0) // far beyond any sensitivity threshold
	n.PacketBudget = 1
	s.ScheduleArrival(n.Id, 1000.0)

	s.Run(Ever)

	assert.Equal(t, uint64(1), s.Report.Nodes[n.Id].Sent)
	assert.Equal(t, uint64(0), s.Report.Nodes[n.Id].Delivered)
	assert.Equal(t, uint64(1), s.Report.Nodes[n.Id].NoiseLost)
	assert.Equal(t, uint64(0), s.Counters.DownlinkEvents)
}

func TestClassBUplinkSchedulesDownlinkOnAPingSlot(t *testing.T) {
	s := newTestSimulator()
	s.AddGateway(1, 0, 0)
	n := s.AddNode(types.ClassB, 50, 0)
	n.PacketBudget = 1
	s.ScheduleArrival(n.Id, 1000.0)

	s.Run(Ever)

	require.Equal(t, uint64(1), s.Counters.DownlinkEvents)
	beaconPeriod := s.beaconPeriodNanos()
	pingSlotPeriod := s.pingSlotPeriodNanos()
	expectedOffset := uint64(n.PingSlotIdx) * pingSlotPeriod
	assert.Equal(t, expectedOffset, s.CurTime%beaconPeriod)
}

func TestDepletedBatteryStopsFurtherTransmissions(t *testing.T) {
	s := newTestSimulator()
	s.AddGateway(1, 0, 0)
	n := s.AddNode(types.ClassA, 50, 0)
	n.PacketBudget = 3
	n.BatteryCapacityJoules = 1e-9 // exhausted well before the first uplink's airtime completes
	s.ScheduleArrival(n.Id, 1.0)

	s.Run(Ever)

	assert.Equal(t, uint64(0), s.Report.Nodes[n.Id].Sent)
	assert.Equal(t, uint64(1), s.Report.Nodes[n.Id].BatteryDepleted)
}

func TestDutyCycleDefersRapidRetransmission(t *testing.T) {
	s := newTestSimulator()
	s.AddGateway(1, 0, 0)
	n := s.AddNode(types.ClassA, 50, 0)
	n.PacketBudget = 5 // a handful of renewals, enough to exercise repeated duty-cycle deferral
	s.ScheduleArrival(n.Id, 1.0) // mean period far shorter than the duty-cycle budget allows back-to-back

	s.Run(Ever)
	// every TxStart observed must itself have respected the duty-cycle
	// budget; reaching this point without the scheduler panicking on an
	// out-of-order timestamp already exercises the defer path.
	assert.GreaterOrEqual(t, s.Counters.TxStartEvents, uint64(1))
	assert.LessOrEqual(t, s.Counters.TxStartEvents, uint64(5))
}

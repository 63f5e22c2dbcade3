package networkserver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rot226/loraflexsim/gateway"
	"github.com/rot226/loraflexsim/lorawan"
	"github.com/rot226/loraflexsim/types"
)

func TestDedupCacheDetectsRepeats(t *testing.T) {
	c := NewDedupCache()
	addr := lorawan.DevAddr{1, 2, 3, 4}
	assert.False(t, c.SeenBefore(addr, 5))
	assert.True(t, c.SeenBefore(addr, 5))
	assert.False(t, c.SeenBefore(addr, 6))
}

func TestDedupCacheEvictsOldestBeyondWindow(t *testing.T) {
	c := NewDedupCache()
	addr := lorawan.DevAddr{9, 9, 9, 9}
	for i := 0; i < dedupWindowEntries+10; i++ {
		c.SeenBefore(addr, uint16(i))
	}
	// The earliest entries should have been evicted and are "new" again.
	assert.False(t, c.SeenBefore(addr, 0))
}

func TestComputeADRNoChangeWhenNoHistory(t *testing.T) {
	gw := gateway.New(1, 0, 0)
	result := ComputeADR(ADRAvg, []*gateway.Gateway{gw}, 1, types.SF12, TxPowerMaxDbm)
	assert.False(t, result.Changed)
}

func TestComputeADRReducesSFWithStrongLink(t *testing.T) {
	gw := gateway.New(1, 0, 0)
	for i := 0; i < 10; i++ {
		gw.RecordSnir(1, 20.0) // very strong link
	}
	result := ComputeADR(ADRAvg, []*gateway.Gateway{gw}, 1, types.SF12, TxPowerMaxDbm)
	assert.True(t, result.Changed)
	assert.Less(t, result.NewSF, types.SF12)
}

func TestComputeADRPicksBestAcrossGateways(t *testing.T) {
	weak := gateway.New(1, 0, 0)
	strong := gateway.New(2, 100, 100)
	for i := 0; i < 5; i++ {
		weak.RecordSnir(1, -5.0)
		strong.RecordSnir(1, 20.0)
	}
	result := ComputeADR(ADRMax, []*gateway.Gateway{weak, strong}, 1, types.SF12, TxPowerMaxDbm)
	assert.True(t, result.Changed)
}

func TestComputeADRLowersPowerAfterReachingMinSF(t *testing.T) {
	gw := gateway.New(1, 0, 0)
	for i := 0; i < 10; i++ {
		gw.RecordSnir(1, 20.0) // enough margin to exhaust SF headroom and then cut power
	}
	result := ComputeADR(ADRAvg, []*gateway.Gateway{gw}, 1, types.SF7, TxPowerMaxDbm)
	assert.True(t, result.Changed)
	assert.Equal(t, types.SF7, result.NewSF)
	assert.Less(t, result.NewTxPowerDb, TxPowerMaxDbm)
}

func TestComputeADRRaisesPowerBeforeSFOnWeakLink(t *testing.T) {
	gw := gateway.New(1, 0, 0)
	for i := 0; i < 10; i++ {
		gw.RecordSnir(1, -25.0) // deficit: needs more margin than SF7 provides
	}
	result := ComputeADR(ADRAvg, []*gateway.Gateway{gw}, 1, types.SF7, TxPowerMinDbm)
	assert.True(t, result.Changed)
	assert.Greater(t, result.NewTxPowerDb, TxPowerMinDbm)
}

func TestBuildLinkADRReqEncodesNewSFAndPower(t *testing.T) {
	region := lorawan.PresetFor(types.RegionEU868)
	result := ADRResult{Changed: true, NewSF: types.SF9, NewTxPowerDb: 8.0}

	cmd, ok := BuildLinkADRReq(result, region, 0xFFFF, 0, 1)
	assert.True(t, ok)
	assert.Equal(t, lorawan.CIDLinkADR, cmd.CID)

	dr := cmd.Payload[0] >> 4
	txPowerIdx := cmd.Payload[0] & 0xF
	wantDR, ok := region.DRForSF(types.SF9)
	assert.True(t, ok)
	assert.Equal(t, uint8(wantDR), dr)
	assert.Equal(t, lorawan.TxPowerIdxForDbm(8.0), txPowerIdx)
}

func TestBuildLinkADRReqNoChangeReturnsFalse(t *testing.T) {
	region := lorawan.PresetFor(types.RegionEU868)
	_, ok := BuildLinkADRReq(ADRResult{}, region, 0xFFFF, 0, 1)
	assert.False(t, ok)
}

func TestScheduleClassAPicksRX1WhenDecisionIsEarly(t *testing.T) {
	plan := ScheduleClassA(1000, 1000, 1_000_000, 2_000_000, 2_000_000, 5, 0, 868100000, 869525000)
	assert.Equal(t, RX1, plan.Window)
}

func TestScheduleClassAFallsBackToRX2WhenDecisionIsLate(t *testing.T) {
	plan := ScheduleClassA(0, 10_000_000, 1_000_000, 2_000_000, 2_000_000, 5, 0, 868100000, 869525000)
	assert.Equal(t, RX2, plan.Window)
}

func TestSchedulePingSlotWithinCurrentPeriod(t *testing.T) {
	plan := SchedulePingSlot(1000, 128_000_000_000, 50_000_000_000, 0, 869525000)
	assert.Equal(t, RXPingSlot, plan.Window)
	assert.Equal(t, uint64(50_000_000_000), plan.SendAtNanos)
}

func TestSchedulePingSlotRollsIntoNextPeriod(t *testing.T) {
	plan := SchedulePingSlot(60_000_000_000, 128_000_000_000, 50_000_000_000, 0, 869525000)
	assert.Equal(t, uint64(128_000_000_000+50_000_000_000), plan.SendAtNanos)
}

func TestScheduleClassCSendsImmediately(t *testing.T) {
	plan := ScheduleClassC(12345, 0, 869525000)
	assert.Equal(t, RXClassC, plan.Window)
	assert.Equal(t, uint64(12345), plan.SendAtNanos)
}

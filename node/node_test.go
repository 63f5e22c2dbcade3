package node

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rot226/loraflexsim/lorawan"
	"github.com/rot226/loraflexsim/types"
)

func TestDutyCycleBudgetAllowsUntilLimit(t *testing.T) {
	b := DutyCycleBudget{LimitFraction: 0.01, WindowNanos: 1_000_000_000}
	assert.True(t, b.Allow(0, 5_000_000))
	b.Consume(0, 5_000_000)
	assert.True(t, b.Allow(0, 5_000_000))
	b.Consume(0, 5_000_000)
	assert.False(t, b.Allow(0, 1))
}

func TestDutyCycleBudgetRollsOverWindow(t *testing.T) {
	b := DutyCycleBudget{LimitFraction: 0.01, WindowNanos: 1_000_000_000}
	b.Consume(0, 10_000_000)
	assert.False(t, b.Allow(0, 1))
	assert.True(t, b.Allow(1_000_000_000, 5_000_000))
}

func TestApplyLinkADRReqUpdatesLocalState(t *testing.T) {
	var client ADRClient
	req := lorawan.LinkADRReq(5, 2, 0x00FF, 0, 1)
	status := client.ApplyLinkADRReq(req)
	assert.True(t, status.DataRateAck)
	assert.Equal(t, types.DataRate(5), client.DataRate)
	assert.Equal(t, uint8(2), client.TxPowerIdx)
	assert.Equal(t, uint8(1), client.NbTrans)
}

func TestNodeApplyLinkADRReqUpdatesSFAndPower(t *testing.T) {
	n := New(1, lorawan.DevAddr{1, 2, 3, 4}, types.ClassA, types.RegionEU868, 0, 0)
	region := lorawan.PresetFor(types.RegionEU868)
	dr, ok := region.DRForSF(types.SF9)
	assert.True(t, ok)

	txPowerIdx := lorawan.TxPowerIdxForDbm(8.0)
	req := lorawan.LinkADRReq(uint8(dr), txPowerIdx, 0xFFFF, 0, 1)

	status := n.ApplyLinkADRReq(region, req)
	assert.True(t, status.DataRateAck)
	assert.Equal(t, types.SF9, n.SF)
	assert.InDelta(t, 8.0, n.TxPowerDbm, 0.01)
	assert.Equal(t, uint32(0), n.AdrAckCnt)
}

func TestEscalateADRRaisesPowerBeforeSF(t *testing.T) {
	n := New(1, lorawan.DevAddr{}, types.ClassA, types.RegionEU868, 0, 0)
	n.SF = types.SF7
	n.TxPowerDbm = lorawan.TxPowerMaxDbm - lorawan.TxPowerStepDb

	assert.True(t, n.EscalateADR())
	assert.Equal(t, lorawan.TxPowerMaxDbm, n.TxPowerDbm)
	assert.Equal(t, types.SF7, n.SF)

	assert.True(t, n.EscalateADR())
	assert.Equal(t, lorawan.TxPowerMaxDbm, n.TxPowerDbm)
	assert.Equal(t, types.SF8, n.SF)
}

func TestEscalateADRNoopAtCeiling(t *testing.T) {
	n := New(1, lorawan.DevAddr{}, types.ClassA, types.RegionEU868, 0, 0)
	n.SF = types.SF12
	n.TxPowerDbm = lorawan.TxPowerMaxDbm

	assert.False(t, n.EscalateADR())
}

func TestNextFCntUpIncrements(t *testing.T) {
	n := New(1, lorawan.DevAddr{1, 2, 3, 4}, types.ClassA, types.RegionEU868, 0, 0)
	assert.Equal(t, uint16(0), n.NextFCntUp())
	assert.Equal(t, uint16(1), n.NextFCntUp())
	assert.Equal(t, uint16(2), n.FCntUp)
}

func TestSubBandBudgetIsSharedAcrossCalls(t *testing.T) {
	n := New(1, lorawan.DevAddr{}, types.ClassA, types.RegionEU868, 0, 0)
	b1 := n.SubBandBudget("g1", 0.01, 1_000_000_000)
	b1.Consume(0, 1_000_000)
	b2 := n.SubBandBudget("g1", 0.01, 1_000_000_000)
	assert.Equal(t, b1, b2)
}

func TestAdrAckScheduleFollowsLimitThenDelay(t *testing.T) {
	n := New(1, lorawan.DevAddr{}, types.ClassA, types.RegionEU868, 0, 0)
	n.ADR.Enabled = true

	for i := 0; i < AdrAckLimit-1; i++ {
		n.RegisterUplink()
	}
	assert.False(t, n.NeedsADRAckReq())
	n.RegisterUplink()
	assert.True(t, n.NeedsADRAckReq())
	assert.False(t, n.ShouldEscalateADR())

	for i := 0; i < AdrAckDelay; i++ {
		n.RegisterUplink()
	}
	assert.True(t, n.ShouldEscalateADR())

	n.RegisterDownlink()
	assert.Equal(t, uint32(0), n.AdrAckCnt)
	assert.False(t, n.NeedsADRAckReq())
}

func TestNeedsADRAckReqFalseWhenADRDisabled(t *testing.T) {
	n := New(1, lorawan.DevAddr{}, types.ClassA, types.RegionEU868, 0, 0)
	for i := 0; i < AdrAckLimit+AdrAckDelay+1; i++ {
		n.RegisterUplink()
	}
	assert.False(t, n.NeedsADRAckReq())
	assert.False(t, n.ShouldEscalateADR())
}

func TestBatteryDepletedFalseWhenNoCapacitySet(t *testing.T) {
	n := New(1, lorawan.DevAddr{}, types.ClassA, types.RegionEU868, 0, 0)
	assert.False(t, n.BatteryDepleted(1_000_000.0))
}

func TestBatteryDepletedTrueOnceCapacityExhausted(t *testing.T) {
	n := New(1, lorawan.DevAddr{}, types.ClassA, types.RegionEU868, 0, 0)
	n.BatteryCapacityJoules = 10.0
	assert.False(t, n.BatteryDepleted(9.9))
	assert.True(t, n.BatteryDepleted(10.0))
	assert.True(t, n.BatteryDepleted(10.1))
}

package energy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rot226/loraflexsim/types"
)

func TestMeterAccumulatesSleepTime(t *testing.T) {
	m := NewMeter(1, DefaultProfile(), 0)
	m.ComputeRadioState(1_000_000_000) // 1s in RadioSleep
	assert.Equal(t, uint64(1_000_000_000), m.TimeSpent(types.RadioSleep))
	assert.Equal(t, uint64(0), m.TimeSpent(types.RadioTx))
}

func TestMeterSwitchesStateWithoutLosingTime(t *testing.T) {
	m := NewMeter(1, DefaultProfile(), 0)
	m.SetRadioState(types.RadioTx, 500_000_000)   // 0.5s sleep
	m.SetRadioState(types.RadioRx, 1_500_000_000) // 1s tx
	m.ComputeRadioState(2_000_000_000)             // 0.5s rx

	assert.Equal(t, uint64(500_000_000), m.TimeSpent(types.RadioSleep))
	assert.Equal(t, uint64(1_000_000_000), m.TimeSpent(types.RadioTx))
	assert.Equal(t, uint64(500_000_000), m.TimeSpent(types.RadioRx))
}

func TestEnergyJoulesIsPositiveAfterTx(t *testing.T) {
	m := NewMeter(1, DefaultProfile(), 0)
	m.SetRadioState(types.RadioTx, 1_000_000_000)
	e := m.EnergyJoules(2_000_000_000)
	assert.Greater(t, e, 0.0)
}

func TestEnergyJoulesByStateSumsToTotal(t *testing.T) {
	m := NewMeter(1, DefaultProfile(), 0)
	m.SetRadioState(types.RadioTx, 1_000_000_000)
	m.SetRadioState(types.RadioRx, 2_000_000_000)
	byState := m.EnergyJoulesByState(3_000_000_000)
	var sum float64
	for _, v := range byState {
		sum += v
	}
	total := m.EnergyJoules(3_000_000_000)
	assert.InDelta(t, total, sum, 1e-12)
}

func TestComputeRadioStatePanicsOnTimeGoingBackwards(t *testing.T) {
	m := NewMeter(1, DefaultProfile(), 1000)
	assert.Panics(t, func() {
		m.ComputeRadioState(500)
	})
}

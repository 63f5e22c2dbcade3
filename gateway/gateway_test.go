package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rot226/loraflexsim/phy"
	"github.com/rot226/loraflexsim/types"
)

func TestStartReceptionCleanFrameSucceeds(t *testing.T) {
	g := New(1, 0, 0)
	r := &Reception{NodeId: 1, SF: types.SF7, RssiDbm: -90}
	g.StartReception(0, r)
	captured, accum := g.FinishReception(0, r)
	assert.True(t, captured)
	assert.InDelta(t, -90, accum, 0.01)
}

func TestStartReceptionStrongerFrameCapturesWeaker(t *testing.T) {
	g := New(1, 0, 0)
	weak := &Reception{NodeId: 1, SF: types.SF7, RssiDbm: -100}
	g.StartReception(0, weak)

	strong := &Reception{NodeId: 2, SF: types.SF7, RssiDbm: -60}
	g.StartReception(0, strong)

	capturedWeak, _ := g.FinishReception(0, weak)
	assert.False(t, capturedWeak)

	capturedStrong, _ := g.FinishReception(0, strong)
	assert.True(t, capturedStrong)
}

// TestStartReceptionLateStrongInterfererCannotCaptureBeforeCsBegin verifies
// the capture window (spec §4.3): an interferer that arrives after the
// victim frame has started and whose overlap ends before csBegin cannot
// capture the receiver away, no matter how much stronger it is.
func TestStartReceptionLateStrongInterfererCannotCaptureBeforeCsBegin(t *testing.T) {
	g := New(1, 0, 0)
	weak := &Reception{NodeId: 1, SF: types.SF7, BW: types.BW125kHz, StartNanos: 0, EndNanos: 500_000_000, RssiDbm: -100}
	g.StartReception(0, weak)

	csBegin := uint64(phy.CaptureWindowEndNanos(0, types.SF7, types.BW125kHz, preambleSymbols))
	strong := &Reception{
		NodeId: 2, SF: types.SF7, BW: types.BW125kHz,
		StartNanos: 1000, EndNanos: csBegin / 2, RssiDbm: -40,
	}
	g.StartReception(0, strong)

	capturedWeak, _ := g.FinishReception(0, weak)
	assert.True(t, capturedWeak, "short-overlap interferer must not defeat the earlier frame")

	capturedStrong, _ := g.FinishReception(0, strong)
	assert.False(t, capturedStrong)
}

// TestStartReceptionLateStrongInterfererCapturesAfterCsBegin mirrors the
// above but with the interferer's overlap extending past csBegin: it is now
// eligible to capture, and (being far stronger) does.
func TestStartReceptionLateStrongInterfererCapturesAfterCsBegin(t *testing.T) {
	g := New(1, 0, 0)
	weak := &Reception{NodeId: 1, SF: types.SF7, BW: types.BW125kHz, StartNanos: 0, EndNanos: 500_000_000, RssiDbm: -100}
	g.StartReception(0, weak)

	csBegin := uint64(phy.CaptureWindowEndNanos(0, types.SF7, types.BW125kHz, preambleSymbols))
	strong := &Reception{
		NodeId: 2, SF: types.SF7, BW: types.BW125kHz,
		StartNanos: 1000, EndNanos: csBegin * 2, RssiDbm: -40,
	}
	g.StartReception(0, strong)

	capturedWeak, _ := g.FinishReception(0, weak)
	assert.False(t, capturedWeak)

	capturedStrong, _ := g.FinishReception(0, strong)
	assert.True(t, capturedStrong)
}

func TestSnirHistoryWindowEvictsOldest(t *testing.T) {
	g := New(1, 0, 0)
	for i := 0; i < maxSnirSamples+5; i++ {
		g.RecordSnir(1, float64(i))
	}
	hist := g.SnirHistory(1)
	assert.Len(t, hist, maxSnirSamples)
	assert.Equal(t, float64(5), hist[0])
}

func TestAvgAndMaxSnir(t *testing.T) {
	g := New(1, 0, 0)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		g.RecordSnir(1, v)
	}
	avg, ok := g.AvgSnir(1)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, avg, 0.001)

	max, ok := g.MaxSnir(1)
	assert.True(t, ok)
	assert.Equal(t, 5.0, max)
}

func TestAvgSnirEmptyHistory(t *testing.T) {
	g := New(1, 0, 0)
	_, ok := g.AvgSnir(99)
	assert.False(t, ok)
}

func TestDistanceTo(t *testing.T) {
	g := New(1, 0, 0)
	assert.InDelta(t, 5.0, g.DistanceTo(3, 4), 0.001)
}

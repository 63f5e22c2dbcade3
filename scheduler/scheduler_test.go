package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rot226/loraflexsim/event"
)

func TestScheduler_NextTimestamp(t *testing.T) {
	s := New()
	assert.Equal(t, Ever, s.NextTimestamp())
	s.Schedule(&event.Event{Timestamp: 2})
	assert.Equal(t, event.Time(2), s.NextTimestamp())
	s.Schedule(&event.Event{Timestamp: 1})
	assert.Equal(t, event.Time(1), s.NextTimestamp())
	s.Schedule(&event.Event{Timestamp: 3})
	assert.Equal(t, event.Time(1), s.NextTimestamp())
}

func TestScheduler_PopOrdersByTimestampThenSeq(t *testing.T) {
	s := New()
	s.Schedule(&event.Event{Timestamp: 2, Kind: event.KindTxDone})
	s.Schedule(&event.Event{Timestamp: 1, Kind: event.KindArrival})
	s.Schedule(&event.Event{Timestamp: 1, Kind: event.KindTxStart})
	s.Schedule(&event.Event{Timestamp: 3, Kind: event.KindBeacon})

	e := s.Pop()
	assert.Equal(t, event.Time(1), e.Timestamp)
	assert.Equal(t, event.KindArrival, e.Kind)

	e = s.Pop()
	assert.Equal(t, event.Time(1), e.Timestamp)
	assert.Equal(t, event.KindTxStart, e.Kind)

	e = s.Pop()
	assert.Equal(t, event.Time(2), e.Timestamp)

	e = s.Pop()
	assert.Equal(t, event.Time(3), e.Timestamp)

	assert.Nil(t, s.Pop())
}

func TestScheduler_CancelSkipsOnPop(t *testing.T) {
	s := New()
	s.Schedule(&event.Event{Timestamp: 1, Kind: event.KindArrival})
	cancelled := &event.Event{Timestamp: 2, Kind: event.KindTxStart}
	s.Schedule(cancelled)
	s.Schedule(&event.Event{Timestamp: 3, Kind: event.KindBeacon})

	s.Cancel(cancelled)

	e := s.Pop()
	assert.Equal(t, event.KindArrival, e.Kind)
	e = s.Pop()
	assert.Equal(t, event.KindBeacon, e.Kind)
	assert.Nil(t, s.Pop())
}

func TestScheduler_EmptyQueueReturnsNil(t *testing.T) {
	s := New()
	assert.Nil(t, s.Pop())
	assert.Equal(t, Ever, s.NextTimestamp())
}

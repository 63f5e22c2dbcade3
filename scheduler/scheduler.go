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

// Package scheduler implements the discrete-event engine's min-heap event
// queue: push, pop-earliest, and cancel-by-handle without a linear scan.
package scheduler

import (
	"container/heap"

	"github.com/rot226/loraflexsim/event"
)

// Ever re-exports event.Ever for callers that only import scheduler.
const Ever = event.Ever

type eventQueue []*event.Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].Timestamp != q[j].Timestamp {
		return q[i].Timestamp < q[j].Timestamp
	}
	return q[i].Seq < q[j].Seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x interface{}) {
	*q = append(*q, x.(*event.Event))
}

func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Scheduler is the discrete-event min-heap scheduler. It is not safe for
// concurrent use: the simulation is a single-threaded cooperative loop.
type Scheduler struct {
	q       eventQueue
	nextSeq uint64
}

// New creates an empty Scheduler.
func New() *Scheduler {
	s := &Scheduler{q: eventQueue{}}
	heap.Init(&s.q)
	return s
}

// Schedule enqueues e for dispatch at e.Timestamp and stamps it with the
// next sequence number, used to break timestamp ties in FIFO order.
func (s *Scheduler) Schedule(e *event.Event) {
	e.Seq = s.nextSeq
	s.nextSeq++
	heap.Push(&s.q, e)
}

// Len returns the number of live (non-popped) entries still on the heap,
// including any marked dead but not yet popped.
func (s *Scheduler) Len() int {
	return s.q.Len()
}

// NextTimestamp returns the timestamp of the earliest non-dead event still
// queued, or Ever if the queue is empty or only holds dead entries.
func (s *Scheduler) NextTimestamp() event.Time {
	for len(s.q) > 0 {
		top := s.q[0]
		if top.Dead() {
			heap.Pop(&s.q)
			continue
		}
		return top.Timestamp
	}
	return Ever
}

// Pop removes and returns the earliest non-dead event, skipping and
// discarding any dead entries it encounters along the way. It returns nil if
// no live event remains.
func (s *Scheduler) Pop() *event.Event {
	for len(s.q) > 0 {
		e := heap.Pop(&s.q).(*event.Event)
		if e.Dead() {
			continue
		}
		return e
	}
	return nil
}

// Cancel marks e so that a later Pop discards it instead of dispatching it.
// The heap entry itself is removed lazily, on the next Pop/NextTimestamp
// that reaches it, rather than searched for and removed eagerly.
func (s *Scheduler) Cancel(e *event.Event) {
	e.Kill()
}

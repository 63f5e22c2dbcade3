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

// Package event defines the discrete-event record scheduled and dispatched
// by the scheduler, and the Kind enum tagging its payload.
package event

import (
	"math"

	"github.com/rot226/loraflexsim/types"
)

// Time is a nanosecond-resolution simulated timestamp, counted from the
// start of the run.
type Time = uint64

// Ever is the sentinel timestamp meaning "never fires"; kept at MaxUint64/2
// so that Ever +/- any plausible delay never overflows/wraps.
const Ever Time = math.MaxUint64 / 2

// Kind tags the payload carried by an Event.
type Kind uint8

const (
	KindArrival           Kind = iota // node has a new uplink frame ready
	KindTxStart                       // node begins transmitting a frame
	KindTxDone                        // node finishes transmitting a frame
	KindRxWindowOpen                  // RX1/RX2/ping-slot window opens
	KindRxWindowClose                 // RX1/RX2/ping-slot window closes
	KindGatewayRxDone                 // gateway finishes receiving a frame (success or not)
	KindServerProcessed               // network server finished processing an uplink
	KindDownlinkReady                 // network server has a downlink queued for a node
	KindBeacon                        // class B beacon transmission
	KindDutyCycleReset                // a sub-band's duty-cycle budget window rolls over
	KindMobilityUpdate                // a node's position is updated
)

func (k Kind) String() string {
	switch k {
	case KindArrival:
		return "arrival"
	case KindTxStart:
		return "tx_start"
	case KindTxDone:
		return "tx_done"
	case KindRxWindowOpen:
		return "rx_window_open"
	case KindRxWindowClose:
		return "rx_window_close"
	case KindGatewayRxDone:
		return "gateway_rx_done"
	case KindServerProcessed:
		return "server_processed"
	case KindDownlinkReady:
		return "downlink_ready"
	case KindBeacon:
		return "beacon"
	case KindDutyCycleReset:
		return "duty_cycle_reset"
	case KindMobilityUpdate:
		return "mobility_update"
	default:
		return "?"
	}
}

// Event is one entry in the scheduler's heap. Seq breaks ties between events
// scheduled for the same Timestamp, in the order they were enqueued, so that
// a run's outcome does not depend on heap implementation details.
type Event struct {
	Timestamp Time
	Seq       uint64
	Kind      Kind
	NodeId    types.NodeId
	GatewayId types.GatewayId
	Payload   interface{}

	// dead marks an event cancelled after being pushed onto the heap; the
	// scheduler skips dead entries when popping rather than searching the
	// heap for them, which would cost O(n).
	dead bool
}

// Dead reports whether this event was cancelled and should be skipped.
func (e *Event) Dead() bool {
	return e.dead
}

// Kill marks the event so the scheduler discards it without dispatching.
func (e *Event) Kill() {
	e.dead = true
}

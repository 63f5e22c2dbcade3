// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in networkserver.go.

package networkserver

import (
	"github.com/rot226/loraflexsim/types"
)

// Default network-latency and server-processing delay, applied between an
// uplink's TX_END at the gateway and a downlink decision being ready (spec
// §4.6): "A fixed network latency (default 10 ms) plus server processing
// delay (default 1.2 s) ... both are configurable to match the reference
// timings." A scenario overrides these via its own fields; these constants
// are only the spec's documented defaults.
const (
	DefaultNetworkLatencyNanos        uint64 = 10_000_000    // 10 ms
	DefaultServerProcessingDelayNanos uint64 = 1_200_000_000 // 1.2 s
)

// RxWindow identifies which receive window a downlink is scheduled into.
type RxWindow uint8

const (
	RX1 RxWindow = iota
	RX2
	RXPingSlot
	RXClassC
)

// DownlinkPlan is when/how the server schedules a downlink for a device.
type DownlinkPlan struct {
	Window      RxWindow
	SendAtNanos uint64
	DataRate    types.DataRate
	FrequencyHz uint32
}

// ScheduleClassA picks RX1 if the downlink decision is ready before the RX1
// window would close, otherwise RX2, following LoRaWAN §5.1's two-window
// class A contract.
func ScheduleClassA(uplinkEndNanos uint64, decisionReadyNanos uint64, rx1DelayNanos, rx1DurationNanos, rx2DelayNanos uint64, rx1DR, rx2DR types.DataRate, rx1FreqHz, rx2FreqHz uint32) DownlinkPlan {
	rx1Open := uplinkEndNanos + rx1DelayNanos
	rx1Close := rx1Open + rx1DurationNanos

	if decisionReadyNanos <= rx1Close {
		sendAt := rx1Open
		if decisionReadyNanos > sendAt {
			sendAt = decisionReadyNanos
		}
		return DownlinkPlan{Window: RX1, SendAtNanos: sendAt, DataRate: rx1DR, FrequencyHz: rx1FreqHz}
	}

	rx2Open := uplinkEndNanos + rx2DelayNanos
	sendAt := rx2Open
	if decisionReadyNanos > sendAt {
		sendAt = decisionReadyNanos
	}
	return DownlinkPlan{Window: RX2, SendAtNanos: sendAt, DataRate: rx2DR, FrequencyHz: rx2FreqHz}
}

// SchedulePingSlot places a class B downlink at the next ping slot at or
// after decisionReadyNanos, given the beacon period and this node's
// ping-slot offset within it.
func SchedulePingSlot(decisionReadyNanos, beaconPeriodNanos, pingSlotOffsetNanos uint64, dr types.DataRate, freqHz uint32) DownlinkPlan {
	sinceEpoch := decisionReadyNanos % beaconPeriodNanos
	var sendAt uint64
	if sinceEpoch <= pingSlotOffsetNanos {
		sendAt = decisionReadyNanos - sinceEpoch + pingSlotOffsetNanos
	} else {
		sendAt = decisionReadyNanos - sinceEpoch + beaconPeriodNanos + pingSlotOffsetNanos
	}
	return DownlinkPlan{Window: RXPingSlot, SendAtNanos: sendAt, DataRate: dr, FrequencyHz: freqHz}
}

// ScheduleClassC places a downlink as soon as the decision is ready: a class
// C device's receiver is continuously open outside of its own TX windows.
func ScheduleClassC(decisionReadyNanos uint64, dr types.DataRate, freqHz uint32) DownlinkPlan {
	return DownlinkPlan{Window: RXClassC, SendAtNanos: decisionReadyNanos, DataRate: dr, FrequencyHz: freqHz}
}

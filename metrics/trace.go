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

// Package metrics records per-run event traces and aggregate statistics, and
// compares a run's scalar results against a reference simulator's recorded
// values within a documented tolerance.
package metrics

import (
	"encoding/json"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rot226/loraflexsim/types"
)

// TraceEvent is one line of a run's event trace: enough to reconstruct what
// happened to which node/gateway and when, without replaying the full
// simulation state.
type TraceEvent struct {
	TimestampNanos uint64         `json:"ts"`
	Kind           string         `json:"kind"`
	NodeId         types.NodeId   `json:"node,omitempty"`
	GatewayId      types.GatewayId `json:"gateway,omitempty"`
	Detail         string         `json:"detail,omitempty"`
}

// Tracer appends newline-delimited JSON trace events to a file, prefixed by
// a header line identifying the run.
type Tracer struct {
	RunID uuid.UUID

	w   io.WriteCloser
	enc *json.Encoder
}

type traceHeader struct {
	RunID uuid.UUID `json:"run_id"`
}

// NewTracer creates (or truncates) the trace file at path and writes its
// header line.
func NewTracer(path string) (*Tracer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "metrics: creating trace file %s", path)
	}
	runID := uuid.New()
	enc := json.NewEncoder(f)
	if err := enc.Encode(traceHeader{RunID: runID}); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "metrics: writing trace header")
	}
	return &Tracer{RunID: runID, w: f, enc: enc}, nil
}

// Record appends one trace event.
func (t *Tracer) Record(e TraceEvent) error {
	return errors.Wrap(t.enc.Encode(e), "metrics: writing trace event")
}

// Close flushes and closes the underlying trace file.
func (t *Tracer) Close() error {
	return t.w.Close()
}

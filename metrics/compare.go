// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in trace.go.

package metrics

import (
	"bufio"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReferenceScalars holds "module.name" -> value entries loaded from a
// reference .sca-style scalar file, for calibration against a recorded
// reference run.
type ReferenceScalars map[string]float64

// LoadReferenceSCA parses a minimal .sca-style scalar file: lines of the
// form "scalar <module> <name> <value>", one result per line, ignoring
// blank lines and lines starting with "#" or "run".
func LoadReferenceSCA(r io.Reader) (ReferenceScalars, error) {
	out := ReferenceScalars{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "run") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 || fields[0] != "scalar" {
			continue
		}
		value, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "metrics: parsing .sca line %d", lineNo)
		}
		key := fields[1] + "." + fields[2]
		out[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "metrics: reading .sca")
	}
	return out, nil
}

// CompareResult is the outcome of comparing one scalar against its
// reference value.
type CompareResult struct {
	Name          string
	Got, Want     float64
	ToleranceFrac float64
	Pass          bool
}

// Compare checks each entry of got against the matching entry of want,
// passing if the relative difference is within toleranceFrac (e.g. 0.05 for
// 5%). A reference entry with Want == 0 uses an absolute tolerance instead,
// since a relative tolerance around zero is meaningless.
func Compare(got map[string]float64, want ReferenceScalars, toleranceFrac float64) []CompareResult {
	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]CompareResult, 0, len(names))
	for _, name := range names {
		wantVal := want[name]
		gotVal := got[name]
		var pass bool
		if wantVal == 0 {
			pass = math.Abs(gotVal) <= toleranceFrac
		} else {
			pass = math.Abs(gotVal-wantVal)/math.Abs(wantVal) <= toleranceFrac
		}
		results = append(results, CompareResult{
			Name: name, Got: gotVal, Want: wantVal, ToleranceFrac: toleranceFrac, Pass: pass,
		})
	}
	return results
}

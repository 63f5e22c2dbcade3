// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in scenario.go.

// This file defines the grammar for the reference simulator's .ini-style
// scenario format, used for cross-validation runs against recorded
// reference traces.
package scenario

import (
	"strconv"

	"github.com/alecthomas/participle"
	"github.com/pkg/errors"
)

// iniFile is the top-level grammar: zero or more [section] blocks, each
// holding zero or more key = value entries.
type iniFile struct {
	Sections []*iniSection `@@*` //nolint
}

type iniSection struct {
	Name    string      `"[" @Ident "]"` //nolint
	Entries []*iniEntry `@@*`            //nolint
}

type iniEntry struct {
	Key   string `@Ident "="`                     //nolint
	Value string `(@Ident | @Int | @Float | @String)` //nolint
}

var iniParser = participle.MustBuild(&iniFile{})

// ReferenceINI is the parsed reference-format scenario, keyed by
// [section][key] -> raw string value.
type ReferenceINI struct {
	Sections map[string]map[string]string
}

// Get looks up a key within a section, reporting whether it was present.
func (r *ReferenceINI) Get(section, key string) (string, bool) {
	s, ok := r.Sections[section]
	if !ok {
		return "", false
	}
	v, ok := s[key]
	return v, ok
}

// GetFloat looks up a key and parses it as a float64.
func (r *ReferenceINI) GetFloat(section, key string) (float64, error) {
	v, ok := r.Get(section, key)
	if !ok {
		return 0, errors.Errorf("reference ini: missing key %s.%s", section, key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "reference ini: %s.%s", section, key)
	}
	return f, nil
}

// ParseReferenceINI parses a reference .ini-style scenario file into a
// ReferenceINI, for cross-validating a run's Scenario against the values
// the reference simulator used.
func ParseReferenceINI(data []byte) (*ReferenceINI, error) {
	file := &iniFile{}
	if err := iniParser.ParseBytes(data, file); err != nil {
		return nil, errors.Wrap(err, "reference ini: parse")
	}

	out := &ReferenceINI{Sections: map[string]map[string]string{}}
	for _, sec := range file.Sections {
		m, ok := out.Sections[sec.Name]
		if !ok {
			m = map[string]string{}
			out.Sections[sec.Name] = m
		}
		for _, entry := range sec.Entries {
			m[entry.Key] = entry.Value
		}
	}
	return out, nil
}

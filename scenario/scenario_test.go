package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rot226/loraflexsim/networkserver"
	"github.com/rot226/loraflexsim/phy"
	"github.com/rot226/loraflexsim/types"
)

func TestDefaultScenarioRegionResolvesToEU868(t *testing.T) {
	s := DefaultScenario()
	assert.Equal(t, types.RegionEU868, s.RegionID())
}

func TestRegionIDResolvesKnownNames(t *testing.T) {
	s := DefaultScenario()
	s.Region = "US915"
	assert.Equal(t, types.RegionUS915, s.RegionID())
	s.Region = "unknown-region"
	assert.Equal(t, types.RegionEU868, s.RegionID())
}

func TestLoadParsesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	content := []byte("region: AS923\nroot_seed: 42\nnodes:\n  - count: 10\n    class: \"A\"\n    period_sec: 60\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AS923", s.Region)
	assert.Equal(t, int64(42), s.RootSeed)
	require.Len(t, s.Nodes, 1)
	assert.Equal(t, 10, s.Nodes[0].Count)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/path/scenario.yaml")
	assert.Error(t, err)
}

func TestParseReferenceINIGroupsEntriesBySection(t *testing.T) {
	data := []byte(`
[general]
seed = 1
duration = 86400

[gateway]
x = 0
y = 0
`)
	ini, err := ParseReferenceINI(data)
	require.NoError(t, err)

	v, ok := ini.Get("general", "seed")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	f, err := ini.GetFloat("general", "duration")
	require.NoError(t, err)
	assert.Equal(t, 86400.0, f)

	_, ok = ini.Get("general", "missing")
	assert.False(t, ok)
}

func TestParseReferenceINIMissingKeyErrors(t *testing.T) {
	ini, err := ParseReferenceINI([]byte("[general]\nseed = 1\n"))
	require.NoError(t, err)
	_, err = ini.GetFloat("general", "nope")
	assert.Error(t, err)
}

func TestADRMethodEnumDefaultsToAvg(t *testing.T) {
	s := DefaultScenario()
	assert.Equal(t, networkserver.ADRAvg, s.ADRMethodEnum())
	s.ADRMethod = "max"
	assert.Equal(t, networkserver.ADRMax, s.ADRMethodEnum())
}

func TestPERModelEnumDefaultsToLogistic(t *testing.T) {
	s := DefaultScenario()
	assert.Equal(t, phy.PERLogistic, s.PERModelEnum())
	s.PERModel = "croce"
	assert.Equal(t, phy.PERCroce, s.PERModelEnum())
}

func TestDefaultScenarioCarriesDutyCycleAndBeaconDefaults(t *testing.T) {
	s := DefaultScenario()
	assert.Equal(t, 0.01, s.DutyCycleFraction)
	assert.Equal(t, uint64(3600*1_000_000_000), s.DutyCycleWindowNanos)
	assert.Equal(t, uint64(128*1_000_000_000), s.BeaconPeriodNanos)
	assert.Equal(t, uint64(1_000_000_000), s.PingSlotPeriodNanos)
}

func TestLoadOverridesDutyCycleFraction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	content := []byte("region: EU868\nduty_cycle_fraction: 0.05\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.05, s.DutyCycleFraction)
}

package metrics

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rot226/loraflexsim/types"
)

func TestTracerWritesHeaderAndEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tr, err := NewTracer(path)
	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, [16]byte(tr.RunID))

	require.NoError(t, tr.Record(TraceEvent{TimestampNanos: 100, Kind: "tx_start", NodeId: 1}))
	require.NoError(t, tr.Close())
}

func TestReportTracksPDRAndEnergy(t *testing.T) {
	r := NewReport()
	r.RecordSent(1)
	r.RecordSent(1)
	r.RecordDelivered(1)
	r.RecordCollisionLost(1)
	r.AddEnergy(1, 0.002)

	stats := r.Nodes[types.NodeId(1)]
	assert.Equal(t, uint64(2), stats.Sent)
	assert.Equal(t, 0.5, stats.PDR())
	assert.Equal(t, 0.5, r.NetworkPDR())

	r.Snapshot(1_000_000_000)
	require.Len(t, r.History, 1)
	assert.Equal(t, 0.5, r.History[0].AvgPDR)
}

func TestReportRecordsBatteryDepleted(t *testing.T) {
	r := NewReport()
	r.RecordSent(1)
	r.RecordBatteryDepleted(1)
	assert.Equal(t, uint64(1), r.Nodes[types.NodeId(1)].BatteryDepleted)
}

func TestReportWriteText(t *testing.T) {
	r := NewReport()
	r.RecordSent(1)
	r.RecordDelivered(1)
	r.Snapshot(0)

	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "nodes.txt")
	networkPath := filepath.Join(dir, "network.txt")
	require.NoError(t, r.WriteText(nodesPath, networkPath))
}

func TestLoadReferenceSCAAndCompare(t *testing.T) {
	data := `run General-0
scalar Network.node[0] pdr 0.95
scalar Network.node[0] energyJoules 1.2
`
	want, err := LoadReferenceSCA(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 0.95, want["Network.node[0].pdr"])

	got := map[string]float64{
		"Network.node[0].pdr":         0.96,
		"Network.node[0].energyJoules": 2.0,
	}
	results := Compare(got, want, 0.05)
	require.Len(t, results, 2)

	byName := map[string]CompareResult{}
	for _, res := range results {
		byName[res.Name] = res
	}
	assert.True(t, byName["Network.node[0].pdr"].Pass)
	assert.False(t, byName["Network.node[0].energyJoules"].Pass)
}

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("read", 15*time.Millisecond)
	pr.ObserveConversionDuration(40 * time.Millisecond)
	pr.IncConversionOutcome(OutcomeSuccess)
	pr.IncConversionOutcome(OutcomeSuccess)
	pr.IncConversionOutcome(OutcomeRejected)
	pr.AddCells("code", 3)
	pr.AddCells("markdown", 2)
	pr.AddCells("markdown", 0)
	pr.IncViewerFailure()

	assert.InDelta(t, 2, testutil.ToFloat64(pr.outcomes.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.outcomes.WithLabelValues("rejected")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(pr.cells.WithLabelValues("code")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.cells.WithLabelValues("markdown")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.viewerFailures), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncConversionOutcome(OutcomeFailed)
	pr.AddCells("code", 1)
	pr.ObserveConversionDuration(time.Second)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncConversionOutcome(OutcomeSuccess)
	r.AddCells("code", 1)
	r.ObserveStageDuration("write", time.Millisecond)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncConversionOutcome(OutcomeDryRun)

	path := filepath.Join(t.TempDir(), "dockbook.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `dockbook_conversions_total{outcome="dry_run"} 1`)

	assert.NoError(t, WriteTextfile("", reg))
}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Finish(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	r.Finish(true, true, 75*time.Second, at)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.runSuccess))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.destructive))
	assert.Equal(t, float64(75), testutil.ToFloat64(r.runDuration))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(r.lastRun))

	r.Finish(false, false, time.Second, at)
	assert.Equal(t, float64(0), testutil.ToFloat64(r.runSuccess))
	assert.Equal(t, float64(0), testutil.ToFloat64(r.destructive))
}

func TestRecorder_ObserveStage(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveStage("cleanup", "wait", 60*time.Second)
	r.ObserveStage("main", "configure", 250*time.Millisecond)

	gauge, err := r.stageDuration.GetMetricWithLabelValues("cleanup", "wait")
	require.NoError(t, err)
	assert.Equal(t, float64(60), testutil.ToFloat64(gauge))
	assert.Equal(t, 2, testutil.CollectAndCount(r.stageDuration))
}

func TestRecorder_SetIdentity(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.SetIdentity("10.0.0.1", "ipv4")
	r.SetIdentity("10.0.0.2", "ipv4")

	assert.Equal(t, 1, testutil.CollectAndCount(r.identity))
	gauge, err := r.identity.GetMetricWithLabelValues("10.0.0.2", "ipv4")
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(gauge))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := NewRecorder()
	r.ObserveStage("main", "configure", time.Second)
	r.Finish(true, false, 2*time.Second, time.Unix(1700000000, 0))

	require.NoError(t, r.WriteTextfile(dir))

	data, err := os.ReadFile(filepath.Join(dir, TextfileName))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "etcdnode_run_success 1")
	assert.Contains(t, text, "etcdnode_destructive_run 0")
	assert.Contains(t, text, `etcdnode_stage_duration_seconds{phase="main",stage="configure"} 1`)
	assert.Contains(t, text, "etcdnode_last_run_timestamp_seconds 1.7e+09")

	expected := `
# HELP etcdnode_run_duration_seconds Wall-clock duration of the last run in seconds
# TYPE etcdnode_run_duration_seconds gauge
etcdnode_run_duration_seconds 2
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "etcdnode_run_duration_seconds"))
}

func TestRecorder_WriteTextfileMissingDir(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write metrics")
}

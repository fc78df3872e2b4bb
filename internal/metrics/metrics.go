// Package metrics records the outcome of one run and exports it in the
// node-exporter textfile format.
//
// Each run owns a fresh registry: the textfile describes the latest run
// only, so nothing is carried over between invocations.
package metrics

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TextfileName is the file written into the textfile collector directory.
const TextfileName = "etcdnode.prom"

const namespace = "etcdnode"

// Recorder collects the metrics of a single run.
type Recorder struct {
	registry *prometheus.Registry

	runSuccess    prometheus.Gauge
	runDuration   prometheus.Gauge
	lastRun       prometheus.Gauge
	destructive   prometheus.Gauge
	stageDuration *prometheus.GaugeVec
	identity      *prometheus.GaugeVec
}

// NewRecorder returns a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_success",
			Help:      "Whether the last run completed (1) or failed (0)",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the last run in seconds",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		destructive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "destructive_run",
			Help:      "Whether the last run purged the data directory (1) or not (0)",
		}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each stage of the last run in seconds",
		}, []string{"phase", "stage"}),
		identity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "identity_info",
			Help:      "Membership entry this host resolved to, and how",
		}, []string{"member", "method"}),
	}

	r.registry.MustRegister(
		r.runSuccess,
		r.runDuration,
		r.lastRun,
		r.destructive,
		r.stageDuration,
		r.identity,
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records how long one stage took.
func (r *Recorder) ObserveStage(phase, stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(phase, stage).Set(d.Seconds())
}

// SetIdentity records the resolved membership entry.
func (r *Recorder) SetIdentity(member, method string) {
	r.identity.Reset()
	r.identity.WithLabelValues(member, method).Set(1)
}

// Finish records the run outcome.
func (r *Recorder) Finish(success, destructive bool, duration time.Duration, at time.Time) {
	r.runSuccess.Set(boolToFloat(success))
	r.destructive.Set(boolToFloat(destructive))
	r.runDuration.Set(duration.Seconds())
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics to dir/etcdnode.prom, replacing the
// previous file atomically.
func (r *Recorder) WriteTextfile(dir string) error {
	path := filepath.Join(dir, TextfileName)
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

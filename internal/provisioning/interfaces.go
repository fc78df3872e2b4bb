package provisioning

import (
	"context"
	"io"
	"time"

	"github.com/imamik/etcdnode/internal/etcdconf"
	"github.com/imamik/etcdnode/internal/installers"
)

// Step is one unit of work inside a phase.
type Step interface {
	// Name returns the stage name used in events, metrics and errors.
	Name() string

	// Run performs the step. A returned error aborts the run.
	Run(ctx *Context) error
}

// stateful is implemented by steps whose completion moves the run to a
// new state.
type stateful interface {
	Enters() State
}

// ServiceController manages the etcd unit and the leader exporter unit.
// Implemented by internal/platform/systemd.Controller.
type ServiceController interface {
	Stop(ctx context.Context, unit string) error
	EnsureRunning(ctx context.Context, unit string) (bool, error)
	Restart(ctx context.Context, unit string) error
	Enable(ctx context.Context, unit string) error
	DaemonReload(ctx context.Context) error
}

// Purger empties a data directory. Implemented by internal/platform/fs.Purger.
type Purger interface {
	Purge(dir string) error
}

// Configurator writes the etcd configuration and reports whether it changed.
// Implemented by internal/etcdconf.FileConfigurator.
type Configurator interface {
	Configure(params etcdconf.Params) (bool, error)
}

// FileApplier puts a managed file in place and reports whether it changed.
type FileApplier interface {
	Apply(f installers.File) (bool, error)
}

// BackupUploader stores data directory archives.
// Implemented by internal/platform/s3.Client.
type BackupUploader interface {
	CheckBucket(ctx context.Context) error
	Upload(ctx context.Context, key string, body io.Reader, size int64) error
}

// Sleeper blocks for a fixed duration. The peer wait is never cut short,
// so implementations must not return early.
type Sleeper interface {
	Sleep(d time.Duration)
}

// PortWaiter blocks until host:port accepts TCP connections or timeout
// elapses. Implemented by internal/util/netutil.WaitForPort.
type PortWaiter func(ctx context.Context, host string, port int, timeout time.Duration) error

// StageRecorder receives the duration of every stage that ran.
// Implemented by internal/metrics.Recorder.
type StageRecorder interface {
	ObserveStage(phase, stage string, d time.Duration)
}

type wallClockSleeper struct{}

func (wallClockSleeper) Sleep(d time.Duration) { time.Sleep(d) }

type diskApplier struct{}

func (diskApplier) Apply(f installers.File) (bool, error) { return f.Apply() }

type noopRecorder struct{}

func (noopRecorder) ObserveStage(string, string, time.Duration) {}

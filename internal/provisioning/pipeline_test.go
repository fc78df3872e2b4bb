package provisioning

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/installers"
)

func requireStageFailure(t *testing.T, err error) *StageFailure {
	t.Helper()
	require.Error(t, err)
	var sf *StageFailure
	require.ErrorAs(t, err, &sf)
	return sf
}

func TestRunDestructive(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), testPlan(true))

	require.NoError(t, Run(h.ctx))

	assert.Equal(t, []State{
		StateIdle, StateServiceStopped, StateDataPurged, StatePeerWaitElapsed, StateConfiguring, StateConfigured,
	}, h.ctx.StateHistory())
	assert.Equal(t, []string{"/var/lib/etcd/b.example.com.etcd"}, h.purger.dirs)
	assert.Equal(t, []time.Duration{60 * time.Second}, h.sleeper.slept)
	require.Len(t, h.conf.applied, 1)
	assert.Equal(t, "new", h.conf.applied[0].InitialClusterState)
	assert.Equal(t, h.ctx.Plan.DataDir, h.conf.applied[0].DataDir)

	// The purge stopped the unit, so the main phase starts it again.
	assert.True(t, h.ctx.Results.ServiceStart)
	assert.Equal(t, []string{
		"stop:begin etcd",
		"stop:end etcd",
		"purge:begin /var/lib/etcd/b.example.com.etcd",
		"purge:end /var/lib/etcd/b.example.com.etcd",
		"wait:begin 1m0s",
		"wait:end 1m0s",
		"configure:begin",
		"configure:end",
		"start etcd",
	}, h.trace.all())

	assert.Equal(t, []string{
		"cleanup/stop-service", "cleanup/purge", "cleanup/peer-wait", "main/configure", "main/ensure-running",
	}, h.metrics.stages)
}

func TestRunNormal(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), testPlan(false))

	require.NoError(t, Run(h.ctx))

	assert.Equal(t, []State{StateIdle, StateConfiguring, StateConfigured}, h.ctx.StateHistory())
	assert.Empty(t, h.purger.dirs)
	assert.Empty(t, h.sleeper.slept)
	assert.Equal(t, -1, h.trace.indexOf("stop:begin etcd"))

	// etcd was already running with a different configuration.
	assert.True(t, h.ctx.Results.ConfigChanged)
	assert.True(t, h.ctx.Results.ServiceStart)
	assert.NotEqual(t, -1, h.trace.indexOf("restart etcd"))
}

func TestRunNormalIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), testPlan(false))
	require.NoError(t, Run(h.ctx))

	h.trace.events = nil
	h.ctx.Results = &Results{}
	require.NoError(t, Run(h.ctx))

	assert.False(t, h.ctx.Results.ConfigChanged)
	assert.False(t, h.ctx.Results.ServiceStart)
	assert.Empty(t, h.ctx.Results.Updated)
	assert.Equal(t, []string{"configure:begin", "configure:end"}, h.trace.all())

	var resources []string
	for _, e := range h.observer.ofType(EventResourceUnchanged) {
		resources = append(resources, e.Resource)
	}
	assert.Equal(t, []string{"/etc/etcd/etcd.conf.yml", "etcd"}, resources)
}

func TestRunStopFailureLeavesDataAlone(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), testPlan(true))
	h.service.stopErr = errors.New("unit etcd did not stop within 1s")

	sf := requireStageFailure(t, Run(h.ctx))

	assert.Equal(t, PhaseCleanup, sf.Phase)
	assert.Equal(t, StageStopService, sf.Stage)
	assert.Equal(t, StateIdle, sf.State)
	assert.Contains(t, sf.Error(), `cleanup stage "stop-service" failed in state Idle`)
	assert.Empty(t, h.purger.dirs)
	assert.Empty(t, h.sleeper.slept)
	assert.Empty(t, h.conf.applied)

	failed := h.observer.ofType(EventStageFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, StageStopService, failed[0].Stage)
}

func TestRunPurgeFailureStopsBeforeWait(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), testPlan(true))
	h.purger.err = errors.New("refusing to purge /: too close to the filesystem root")

	sf := requireStageFailure(t, Run(h.ctx))

	assert.Equal(t, StagePurge, sf.Stage)
	assert.Equal(t, StateServiceStopped, sf.State)
	assert.Empty(t, h.sleeper.slept)
	assert.Empty(t, h.conf.applied)
}

func TestRunInterruptedPeerWait(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), testPlan(true))
	cctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.ctx.Context = cctx
	h.sleeper.onSleep = cancel

	sf := requireStageFailure(t, Run(h.ctx))

	assert.Equal(t, StagePeerWait, sf.Stage)
	assert.Equal(t, StateDataPurged, sf.State)
	require.ErrorIs(t, sf, context.Canceled)

	// The wait is never shortened, and nothing is configured after it.
	assert.Equal(t, []time.Duration{60 * time.Second}, h.sleeper.slept)
	assert.Empty(t, h.conf.applied)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), testPlan(true))
	cctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.ctx.Context = cctx

	sf := requireStageFailure(t, Run(h.ctx))

	assert.Equal(t, StageStopService, sf.Stage)
	assert.Contains(t, sf.Error(), "run interrupted")
	assert.Empty(t, h.trace.all())
}

func TestRunPreflightFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), testPlan(true))
	h.ctx.CheckTools = func(*config.Config) error {
		return errors.New("missing required tools: systemctl (service manager)")
	}

	sf := requireStageFailure(t, Run(h.ctx))

	assert.Equal(t, PhasePreflight, sf.Phase)
	assert.Equal(t, StateIdle, sf.State)
	assert.Empty(t, h.trace.all())
}

func TestRunBackup(t *testing.T) {
	t.Parallel()

	dataDir := filepath.Join(t.TempDir(), "b.example.com.etcd")
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "member", "snap"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "member", "snap", "db"), []byte("bolt"), 0o600))

	cfg := testConfig()
	cfg.Backup = config.BackupConfig{Enabled: true, Region: "eu-central", Bucket: "backups", Prefix: "etcd"}
	plan := testPlan(true)
	plan.DataDir = dataDir

	h := newHarness(cfg, plan)
	require.NoError(t, Run(h.ctx))

	wantKey := "etcd/b.example.com/20261017T120000Z.tar.xz"
	assert.Equal(t, []string{wantKey}, h.uploader.keys)
	assert.Equal(t, wantKey, h.ctx.Results.BackupKey)
	require.Len(t, h.uploader.bodies, 1)
	assert.NotEmpty(t, h.uploader.bodies[0])

	backup := h.trace.indexOf("backup " + wantKey)
	assert.Greater(t, backup, h.trace.indexOf("stop:end etcd"))
	assert.Less(t, backup, h.trace.indexOf("purge:begin "+dataDir))
}

func TestRunBackupFailureKeepsData(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	cfg := testConfig()
	cfg.Backup = config.BackupConfig{Enabled: true, Region: "eu-central", Bucket: "backups"}
	plan := testPlan(true)
	plan.DataDir = dataDir

	h := newHarness(cfg, plan)
	h.uploader.uploadErr = errors.New("failed to upload to bucket backups")

	sf := requireStageFailure(t, Run(h.ctx))

	assert.Equal(t, StageBackup, sf.Stage)
	assert.Equal(t, StateServiceStopped, sf.State)
	assert.Empty(t, h.purger.dirs)
}

func TestRunBackupSkipsMissingDataDir(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Backup = config.BackupConfig{Enabled: true, Region: "eu-central", Bucket: "backups"}
	plan := testPlan(true)
	plan.DataDir = filepath.Join(t.TempDir(), "absent.etcd")

	h := newHarness(cfg, plan)
	require.NoError(t, Run(h.ctx))

	assert.Empty(t, h.uploader.keys)
	assert.Equal(t, []string{plan.DataDir}, h.purger.dirs)
}

func TestRunBackupWithoutUploader(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Backup = config.BackupConfig{Enabled: true, Region: "eu-central", Bucket: "backups"}
	h := newHarness(cfg, testPlan(true))
	h.ctx.Backup = nil

	sf := requireStageFailure(t, Run(h.ctx))
	assert.Equal(t, StageBackup, sf.Stage)
	assert.Empty(t, h.purger.dirs)
}

func TestRunOptionalStages(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Cron.Enabled = true
	cfg.Monitoring = config.MonitoringConfig{Enabled: true, Warning: intPtr(1), Critical: intPtr(2)}
	cfg.LeaderExporter.Enabled = true

	h := newHarness(cfg, testPlan(false))
	require.NoError(t, Run(h.ctx))

	unitPath := filepath.Join(installers.UnitDir, installers.LeaderExporterUnit)
	assert.Contains(t, h.files.files, installers.CronPath)
	assert.Contains(t, h.files.files, "/etc/nagios/nrpe.d/etcd.cfg")
	assert.Contains(t, h.files.files, unitPath)

	// Executables land before anything that runs them.
	plugin := h.trace.indexOf("file " + installers.CheckPlugin)
	command := h.trace.indexOf("file /etc/nagios/nrpe.d/etcd.cfg")
	exporter := h.trace.indexOf("file " + installers.LeaderExporterBinary)
	unit := h.trace.indexOf("file " + unitPath)
	require.NotEqual(t, -1, plugin)
	require.NotEqual(t, -1, exporter)
	assert.Less(t, plugin, command)
	assert.Less(t, exporter, unit)
	assert.Contains(t, h.ctx.Results.Updated, installers.CheckPlugin)
	assert.Contains(t, h.ctx.Results.Updated, installers.LeaderExporterBinary)

	reload := h.trace.indexOf("daemon-reload")
	enable := h.trace.indexOf("enable " + installers.LeaderExporterUnit)
	restart := h.trace.indexOf("restart " + installers.LeaderExporterUnit)
	require.NotEqual(t, -1, reload)
	assert.Less(t, reload, enable)
	assert.Less(t, enable, restart)

	assert.Equal(t, []string{
		"main/configure", "main/ensure-running", "main/cron", "main/monitoring", "main/leader-exporter",
	}, h.metrics.stages)

	// A second run finds everything in place.
	h.trace.events = nil
	h.ctx.Results = &Results{}
	require.NoError(t, Run(h.ctx))
	assert.Empty(t, h.ctx.Results.Updated)
	assert.Equal(t, -1, h.trace.indexOf("daemon-reload"))
}

func TestRunLeaderExporterScriptChangeRestarts(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.LeaderExporter.Enabled = true

	h := newHarness(cfg, testPlan(false))
	require.NoError(t, Run(h.ctx))

	// Only the script differs on disk; the unit file is unchanged.
	h.files.files[installers.LeaderExporterBinary] = []byte("#!/bin/sh\n")
	h.trace.events = nil
	h.ctx.Results = &Results{}
	require.NoError(t, Run(h.ctx))

	assert.Equal(t, []string{installers.LeaderExporterBinary}, h.ctx.Results.Updated)
	assert.NotEqual(t, -1, h.trace.indexOf("restart "+installers.LeaderExporterUnit))
}

func TestPurgeStepRefusals(t *testing.T) {
	t.Parallel()

	t.Run("normal plan", func(t *testing.T) {
		t.Parallel()
		h := newHarness(testConfig(), testPlan(false))
		err := purgeStep{}.Run(h.ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-destructive")
		assert.Empty(t, h.purger.dirs)
	})

	t.Run("service not stopped", func(t *testing.T) {
		t.Parallel()
		h := newHarness(testConfig(), testPlan(true))
		err := purgeStep{}.Run(h.ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refusing to purge in state Idle")
		assert.Empty(t, h.purger.dirs)
	})
}

func TestBackupKey(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "etcd/a.example.com/20260102T020405Z.tar.xz", BackupKey("etcd", "a.example.com", at))
	assert.Equal(t, "10.0.0.1/20260102T020405Z.tar.xz", BackupKey("", "10.0.0.1", at))
}

func TestStageFailureUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	var e error = &StageFailure{Phase: PhaseMain, Stage: StageConfigure, State: StateConfiguring, Err: cause}

	assert.True(t, IsStageFailure(e))
	assert.ErrorIs(t, e, cause)
	assert.False(t, IsStageFailure(cause))
}

func TestRunWaitsForClientPortAfterStart(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), testPlan(true))
	h.ctx.Timeouts.ServiceReady = 5 * time.Second
	var probed []string
	h.ctx.WaitPort = func(_ context.Context, host string, port int, timeout time.Duration) error {
		probed = append(probed, fmt.Sprintf("%s:%d/%s", host, port, timeout))
		return nil
	}

	require.NoError(t, Run(h.ctx))
	assert.Equal(t, []string{"127.0.0.1:2379/5s"}, probed)

	// Already running with an unchanged configuration: nothing to probe.
	probed = nil
	h.ctx.Plan = testPlan(false)
	h.ctx.Results = &Results{}
	require.NoError(t, Run(h.ctx))
	assert.Empty(t, probed)
}

func TestRunClientPortUnreachable(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), testPlan(false))
	h.ctx.WaitPort = func(context.Context, string, int, time.Duration) error {
		return errors.New("timeout waiting for 127.0.0.1:2379")
	}

	sf := requireStageFailure(t, Run(h.ctx))

	assert.Equal(t, PhaseMain, sf.Phase)
	assert.Equal(t, StageEnsureRunning, sf.Stage)
	assert.Contains(t, sf.Error(), "client port is not reachable")
}

package provisioning

import (
	"fmt"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/etcdconf"
	"github.com/imamik/etcdnode/internal/installers"
)

// Main phase stage names.
const (
	StageConfigure      = "configure"
	StageEnsureRunning  = "ensure-running"
	StageCron           = "cron"
	StageMonitoring     = "monitoring"
	StageLeaderExporter = "leader-exporter"
)

// MainSteps returns the main phase. Optional stages are included only
// when enabled in cfg.
func MainSteps(cfg *config.Config) []Step {
	steps := []Step{configureStep{}, ensureRunningStep{}}
	if cfg.Cron.Enabled {
		steps = append(steps, fileStep{name: StageCron, build: func(ctx *Context) ([]installers.File, error) {
			return buildFiles(func() (installers.File, error) { return installers.DefragCron(ctx.Config) })
		}})
	}
	if cfg.Monitoring.Enabled {
		steps = append(steps, fileStep{name: StageMonitoring, build: func(ctx *Context) ([]installers.File, error) {
			return buildFiles(
				installers.CheckPluginScript,
				func() (installers.File, error) { return installers.MonitoringCommand(ctx.Config, ctx.Facts.OSFamily) },
			)
		}})
	}
	if cfg.LeaderExporter.Enabled {
		steps = append(steps, leaderExporterStep{})
	}
	return steps
}

type configureStep struct{}

func (configureStep) Name() string { return StageConfigure }

func (configureStep) Run(ctx *Context) error {
	params := etcdconf.Build(ctx.Config, ctx.Plan.Identity.Member, ctx.Plan.DataDir)
	changed, err := ctx.Configurator.Configure(params)
	if err != nil {
		return fmt.Errorf("failed to write etcd configuration: %w", err)
	}
	ctx.Results.ConfigChanged = changed
	logResource(ctx.Observer, PhaseMain, StageConfigure, ctx.Config.ConfigFile, changed)
	if changed {
		ctx.Results.Updated = append(ctx.Results.Updated, ctx.Config.ConfigFile)
	}
	return nil
}

// ensureRunningStep starts etcd if needed, and restarts it when the
// configuration changed under a unit that was already running.
type ensureRunningStep struct{}

func (ensureRunningStep) Name() string { return StageEnsureRunning }

func (ensureRunningStep) Run(ctx *Context) error {
	unit := ctx.Config.Service
	started, err := ctx.Service.EnsureRunning(ctx, unit)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", unit, err)
	}
	if !started && ctx.Results.ConfigChanged {
		if err := ctx.Service.Restart(ctx, unit); err != nil {
			return fmt.Errorf("failed to restart %s after configuration change: %w", unit, err)
		}
		started = true
	}
	ctx.Results.ServiceStart = started
	if started && ctx.WaitPort != nil {
		if err := ctx.WaitPort(ctx, etcdconf.Loopback, ctx.Config.ClientPort, ctx.Timeouts.ServiceReady); err != nil {
			return fmt.Errorf("%s started but the client port is not reachable: %w", unit, err)
		}
	}
	logResource(ctx.Observer, PhaseMain, StageEnsureRunning, unit, started)
	return nil
}

// fileStep puts its files in place in order.
type fileStep struct {
	name  string
	build func(ctx *Context) ([]installers.File, error)
}

func (s fileStep) Name() string { return s.name }

func (s fileStep) Run(ctx *Context) error {
	files, err := s.build(ctx)
	if err != nil {
		return err
	}
	_, err = applyFiles(ctx, s.name, files)
	return err
}

func buildFiles(builders ...func() (installers.File, error)) ([]installers.File, error) {
	files := make([]installers.File, 0, len(builders))
	for _, build := range builders {
		f, err := build()
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// applyFiles reports whether any of files changed on disk.
func applyFiles(ctx *Context, stage string, files []installers.File) (bool, error) {
	anyChanged := false
	for _, f := range files {
		changed, err := ctx.Files.Apply(f)
		if err != nil {
			return false, err
		}
		logResource(ctx.Observer, PhaseMain, stage, f.Path, changed)
		if changed {
			ctx.Results.Updated = append(ctx.Results.Updated, f.Path)
			anyChanged = true
		}
	}
	return anyChanged, nil
}

type leaderExporterStep struct{}

func (leaderExporterStep) Name() string { return StageLeaderExporter }

func (leaderExporterStep) Run(ctx *Context) error {
	files, err := buildFiles(
		installers.LeaderExporterScript,
		func() (installers.File, error) { return installers.LeaderExporterUnitFile(ctx.Config) },
	)
	if err != nil {
		return err
	}
	changed, err := applyFiles(ctx, StageLeaderExporter, files)
	if err != nil {
		return err
	}

	unit := installers.LeaderExporterUnit
	if !changed {
		if _, err := ctx.Service.EnsureRunning(ctx, unit); err != nil {
			return fmt.Errorf("failed to start %s: %w", unit, err)
		}
		return nil
	}

	if err := ctx.Service.DaemonReload(ctx); err != nil {
		return err
	}
	if err := ctx.Service.Enable(ctx, unit); err != nil {
		return err
	}
	if err := ctx.Service.Restart(ctx, unit); err != nil {
		return fmt.Errorf("failed to restart %s: %w", unit, err)
	}
	return nil
}

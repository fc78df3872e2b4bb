package provisioning

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/etcdconf"
	"github.com/imamik/etcdnode/internal/facts"
	platformfs "github.com/imamik/etcdnode/internal/platform/fs"
	"github.com/imamik/etcdnode/internal/platform/systemd"
	"github.com/imamik/etcdnode/internal/util/netutil"
	"github.com/imamik/etcdnode/internal/util/prerequisites"
)

// Results accumulates what the steps of a run did.
type Results struct {
	ConfigChanged bool     `json:"config_changed"`
	ServiceStart  bool     `json:"service_start"` // The etcd unit had to be started or restarted
	BackupKey     string   `json:"backup_key,omitempty"`
	Updated       []string `json:"updated"`
}

// Context carries the inputs and collaborators of one run.
type Context struct {
	context.Context
	Config   *config.Config
	Facts    facts.Facts
	Plan     BootstrapPlan
	Observer Observer
	Timeouts *config.Timeouts
	RunID    string

	Service      ServiceController
	Purger       Purger
	Configurator Configurator
	Files        FileApplier
	Backup       BackupUploader // Required when backups are enabled
	Sleeper      Sleeper
	Metrics      StageRecorder

	// WaitPort probes the client port after etcd was started; nil skips it.
	WaitPort PortWaiter

	// CheckTools verifies host prerequisites before the first step; nil skips it.
	CheckTools func(cfg *config.Config) error

	Now func() time.Time

	Results *Results
	machine *StateMachine
}

// NewContext returns a Context wired to this host: systemd, the local
// filesystem and a wall-clock sleeper. Events go to log.
func NewContext(ctx context.Context, cfg *config.Config, f facts.Facts, plan BootstrapPlan, log logr.Logger) *Context {
	timeouts := config.LoadTimeouts()
	runID := uuid.NewString()

	return &Context{
		Context:      ctx,
		Config:       cfg,
		Facts:        f,
		Plan:         plan,
		Observer:     NewLogObserver(log).WithFields(map[string]string{"run_id": runID, "member": plan.Identity.Member}),
		Timeouts:     timeouts,
		RunID:        runID,
		Service:      systemd.NewController(timeouts),
		Purger:       platformfs.NewPurger(),
		Configurator: etcdconf.NewFileConfigurator(cfg.ConfigFile),
		Files:        diskApplier{},
		Sleeper:      wallClockSleeper{},
		Metrics:      noopRecorder{},
		WaitPort:     netutil.WaitForPort,
		CheckTools:   checkTools,
		Now:          time.Now,
		Results:      &Results{},
	}
}

// State returns the current state of the run, or Idle before Run starts.
func (c *Context) State() State {
	if c.machine == nil {
		return StateIdle
	}
	return c.machine.Current()
}

// StateHistory returns the states the run passed through.
func (c *Context) StateHistory() []State {
	if c.machine == nil {
		return []State{StateIdle}
	}
	return c.machine.History()
}

func checkTools(cfg *config.Config) error {
	return prerequisites.Check(prerequisites.ForConfig(cfg)).Error()
}

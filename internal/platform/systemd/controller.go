package systemd

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/util/retry"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands on the local host.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 - name is always systemctl, args are unit names from validated config
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Unit states reported by "systemctl is-active".
const (
	StateActive       = "active"
	StateInactive     = "inactive"
	StateFailed       = "failed"
	StateActivating   = "activating"
	StateDeactivating = "deactivating"
)

// Controller manages systemd units.
type Controller struct {
	run          Runner
	stopTimeout  time.Duration
	pollAttempts int
	pollDelay    time.Duration
}

// NewController returns a Controller using systemctl on this host.
func NewController(t *config.Timeouts) *Controller {
	return NewControllerWithRunner(ExecRunner, t)
}

// NewControllerWithRunner returns a Controller that runs commands through run.
func NewControllerWithRunner(run Runner, t *config.Timeouts) *Controller {
	if t == nil {
		t = config.LoadTimeouts()
	}
	return &Controller{
		run:          run,
		stopTimeout:  t.ServiceStop,
		pollAttempts: t.RetryMaxAttempts,
		pollDelay:    t.RetryInitialDelay,
	}
}

// State returns the unit's active state. A unit that does not exist
// reports "inactive".
func (c *Controller) State(ctx context.Context, unit string) (string, error) {
	out, err := c.systemctl(ctx, "is-active", unit)
	state := firstLine(out)
	if state == "" {
		if err != nil {
			return "", fmt.Errorf("failed to query state of %s: %w", unit, err)
		}
		return "", fmt.Errorf("failed to query state of %s: empty output", unit)
	}
	// is-active exits non-zero for every state but active.
	if state == "unknown" {
		state = StateInactive
	}
	return state, nil
}

// Stop stops unit and waits until it is no longer running. It fails if
// the unit is still running after the configured stop timeout.
func (c *Controller) Stop(ctx context.Context, unit string) error {
	ctx, cancel := context.WithTimeout(ctx, c.stopTimeout)
	defer cancel()

	if out, err := c.systemctl(ctx, "stop", unit); err != nil {
		return fmt.Errorf("systemctl stop %s failed: %w: %s", unit, err, firstLine(out))
	}

	return c.waitFor(ctx, unit, func(state string) bool {
		return state == StateInactive || state == StateFailed
	})
}

// EnsureRunning starts unit when it is not active. It reports whether the
// unit had to be started.
func (c *Controller) EnsureRunning(ctx context.Context, unit string) (bool, error) {
	state, err := c.State(ctx, unit)
	if err != nil {
		return false, err
	}
	if state == StateActive {
		return false, nil
	}

	if out, err := c.systemctl(ctx, "start", unit); err != nil {
		return false, fmt.Errorf("systemctl start %s failed: %w: %s", unit, err, firstLine(out))
	}
	if err := c.waitFor(ctx, unit, func(s string) bool { return s == StateActive }); err != nil {
		return false, err
	}
	return true, nil
}

// Restart restarts unit and waits for it to become active.
func (c *Controller) Restart(ctx context.Context, unit string) error {
	if out, err := c.systemctl(ctx, "restart", unit); err != nil {
		return fmt.Errorf("systemctl restart %s failed: %w: %s", unit, err, firstLine(out))
	}
	return c.waitFor(ctx, unit, func(s string) bool { return s == StateActive })
}

// Enable marks unit to start at boot.
func (c *Controller) Enable(ctx context.Context, unit string) error {
	if out, err := c.systemctl(ctx, "enable", unit); err != nil {
		return fmt.Errorf("systemctl enable %s failed: %w: %s", unit, err, firstLine(out))
	}
	return nil
}

// DaemonReload makes systemd pick up changed unit files.
func (c *Controller) DaemonReload(ctx context.Context) error {
	if out, err := c.systemctl(ctx, "daemon-reload"); err != nil {
		return fmt.Errorf("systemctl daemon-reload failed: %w: %s", err, firstLine(out))
	}
	return nil
}

func (c *Controller) waitFor(ctx context.Context, unit string, done func(string) bool) error {
	var last string
	err := retry.Do(ctx, func(ctx context.Context) error {
		state, err := c.State(ctx, unit)
		if err != nil {
			return err
		}
		last = state
		if !done(state) {
			return fmt.Errorf("%s is %s", unit, state)
		}
		return nil
	}, retry.WithAttempts(c.pollAttempts), retry.WithInitialDelay(c.pollDelay))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timed out waiting for %s (last state %q): %w", unit, last, err)
		}
		return err
	}
	return nil
}

func (c *Controller) systemctl(ctx context.Context, args ...string) ([]byte, error) {
	return c.run(ctx, "systemctl", args...)
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

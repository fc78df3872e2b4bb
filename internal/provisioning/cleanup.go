package provisioning

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/util/archive"
)

// Cleanup phase stage names.
const (
	StageStopService = "stop-service"
	StageBackup      = "backup"
	StagePurge       = "purge"
	StagePeerWait    = "peer-wait"
)

// CleanupSteps returns the cleanup phase of a destructive run.
func CleanupSteps(cfg *config.Config) []Step {
	steps := []Step{stopServiceStep{}}
	if cfg.Backup.Enabled {
		steps = append(steps, backupStep{})
	}
	return append(steps, purgeStep{}, peerWaitStep{})
}

type stopServiceStep struct{}

func (stopServiceStep) Name() string  { return StageStopService }
func (stopServiceStep) Enters() State { return StateServiceStopped }

func (stopServiceStep) Run(ctx *Context) error {
	unit := ctx.Config.Service
	if err := ctx.Service.Stop(ctx, unit); err != nil {
		return fmt.Errorf("failed to stop %s: %w", unit, err)
	}
	ctx.Observer.Printf("%s stopped", unit)
	return nil
}

type backupStep struct{}

func (backupStep) Name() string { return StageBackup }

func (backupStep) Run(ctx *Context) error {
	if ctx.Backup == nil {
		return errors.New("backup is enabled but no uploader is configured")
	}

	dir := ctx.Plan.DataDir
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			ctx.Observer.Printf("data directory %s does not exist, nothing to back up", dir)
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	bctx, cancel := context.WithTimeout(ctx, ctx.Timeouts.Backup)
	defer cancel()

	if err := ctx.Backup.CheckBucket(bctx); err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "etcdnode-backup-*"+archive.Extension)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := archive.TarXZ(bctx, tmp, dir); err != nil {
		return err
	}
	size, err := tmp.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to size archive: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind archive: %w", err)
	}

	key := BackupKey(ctx.Config.Backup.Prefix, ctx.Plan.Identity.Member, ctx.Now())
	if err := ctx.Backup.Upload(bctx, key, tmp, size); err != nil {
		return err
	}

	ctx.Results.BackupKey = key
	ctx.Observer.Printf("backed up %s to %s (%d bytes)", dir, key, size)
	return nil
}

// BackupKey returns prefix/member/<UTC timestamp>.tar.xz.
func BackupKey(prefix, member string, at time.Time) string {
	return path.Join(prefix, member, at.UTC().Format("20060102T150405Z")+archive.Extension)
}

type purgeStep struct{}

func (purgeStep) Name() string  { return StagePurge }
func (purgeStep) Enters() State { return StateDataPurged }

func (purgeStep) Run(ctx *Context) error {
	if !ctx.Plan.Destructive {
		return errors.New("refusing to purge during a non-destructive run")
	}
	if ctx.State() != StateServiceStopped {
		return fmt.Errorf("refusing to purge in state %s", ctx.State())
	}
	if err := ctx.Purger.Purge(ctx.Plan.DataDir); err != nil {
		return err
	}
	ctx.Observer.Printf("purged %s", ctx.Plan.DataDir)
	return nil
}

type peerWaitStep struct{}

func (peerWaitStep) Name() string  { return StagePeerWait }
func (peerWaitStep) Enters() State { return StatePeerWaitElapsed }

// Run sleeps for the full wait. Cancellation does not shorten the sleep;
// it is checked afterwards and fails the run, which must then start over.
func (peerWaitStep) Run(ctx *Context) error {
	d := time.Duration(ctx.Plan.WaitSeconds) * time.Second
	ctx.Observer.Printf("waiting %v for peers to notice the member is gone", d)

	ctx.Sleeper.Sleep(d)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("peer wait interrupted: %w", err)
	}
	return nil
}

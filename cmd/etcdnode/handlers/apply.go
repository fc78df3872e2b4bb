package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/metrics"
	"github.com/imamik/etcdnode/internal/platform/s3"
	"github.com/imamik/etcdnode/internal/provisioning"
	"github.com/imamik/etcdnode/internal/ui/report"
)

// ApplyOptions configures Apply.
type ApplyOptions struct {
	GlobalOptions
	Overrides
	ConfigPath string
	Output     string
}

// Factory function variables for apply - can be replaced in tests.
var (
	// newRunContext wires a run to this host.
	newRunContext = provisioning.NewContext

	// runPipeline executes the staged run.
	runPipeline = provisioning.Run

	// newBackupUploader connects to the backup bucket.
	newBackupUploader = func(ctx context.Context, cfg *config.Config) (provisioning.BackupUploader, error) {
		return s3.NewClient(ctx, s3.Options{
			Endpoint:  cfg.Backup.Endpoint,
			Region:    cfg.Backup.Region,
			Bucket:    cfg.Backup.Bucket,
			AccessKey: os.Getenv(config.EnvS3AccessKey),
			SecretKey: os.Getenv(config.EnvS3SecretKey),
		})
	}

	// now is the clock used for run metrics.
	now = time.Now
)

// Apply configures the local etcd member.
//
// The workflow is:
//  1. Load the env file, then load and validate the configuration
//  2. Take the host fact snapshot and resolve which member this host is
//  3. Run the staged pipeline: for a reset, stop etcd, optionally back up,
//     purge the data directory and wait for peers; then write the etcd
//     configuration, ensure etcd runs and apply the optional host features
//  4. Export run metrics when a textfile directory is configured
//
// Nothing on the host is touched before step 3.
func Apply(ctx context.Context, opts ApplyOptions) error {
	if err := report.ValidateFormat(outputOrText(opts.Output)); err != nil {
		return err
	}
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return err
	}

	cfg, err := loadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}

	log, flush, err := setupLogger(opts.GlobalOptions, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = flush() }()

	start := now()
	rec := metrics.NewRecorder()

	prep, rctx, err := prepareRun(ctx, cfg, log, rec)
	if err == nil {
		err = runPipeline(rctx)
	}

	destructive := prep != nil && prep.Plan.Destructive
	rec.Finish(err == nil, destructive, now().Sub(start), now())
	if dir := cfg.Metrics.TextfileDir; dir != "" {
		if werr := rec.WriteTextfile(dir); werr != nil {
			log.Error(werr, "failed to export run metrics", "dir", dir)
		}
	}

	if err != nil {
		log.Error(err, "run failed")
	}
	if prep != nil {
		results := &provisioning.Results{}
		if rctx != nil {
			results = rctx.Results
		}
		if perr := report.NewPrinter(stdout, opts.Output).Result(prep, results, err); perr != nil && err == nil {
			return perr
		}
	}
	return err
}

// prepareRun resolves the identity and wires the run context. It has no
// side effects on the host apart from connecting to the backup bucket.
func prepareRun(ctx context.Context, cfg *config.Config, log logr.Logger, rec *metrics.Recorder) (*provisioning.Preparation, *provisioning.Context, error) {
	f, err := gatherFacts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to gather host facts: %w", err)
	}

	prep, err := provisioning.Prepare(cfg, f)
	if err != nil {
		return nil, nil, err
	}
	log.Info("resolved identity", "member", prep.Identity.Member, "method", string(prep.Identity.Method))
	rec.SetIdentity(prep.Identity.Member, string(prep.Identity.Method))

	rctx := newRunContext(ctx, cfg, f, prep.Plan, log)
	rctx.Metrics = rec

	if cfg.Backup.Enabled && prep.Plan.Destructive {
		uploader, err := newBackupUploader(ctx, cfg)
		if err != nil {
			return prep, nil, fmt.Errorf("failed to set up backup: %w", err)
		}
		rctx.Backup = uploader
	}

	return prep, rctx, nil
}

func outputOrText(format string) string {
	if format == "" {
		return report.FormatText
	}
	return format
}

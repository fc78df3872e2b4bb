package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/etcdnode/internal/provisioning"
	"github.com/imamik/etcdnode/internal/ui/report"
)

// PlanOptions configures Plan.
type PlanOptions struct {
	GlobalOptions
	Overrides
	ConfigPath string
	Output     string
}

// Plan prints what Apply would do on this host: the resolved identity, the
// bootstrap mode and the etcd parameters. It changes nothing, so running it
// twice with the same inputs prints the same output.
func Plan(ctx context.Context, opts PlanOptions) error {
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

	f, err := gatherFacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to gather host facts: %w", err)
	}
	log.V(1).Info("gathered facts", "fqdn", f.FQDN, "hostname", f.Hostname, "interfaces", f.Interfaces)

	prep, err := provisioning.Prepare(cfg, f)
	if err != nil {
		return err
	}

	return report.NewPrinter(stdout, opts.Output).Plan(prep)
}

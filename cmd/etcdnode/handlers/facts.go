package handlers

import (
	"context"
	"fmt"
	"regexp"

	"github.com/imamik/etcdnode/internal/ui/report"
)

// FactsOptions configures Facts.
type FactsOptions struct {
	Exclude string // Interface exclusion pattern
	Output  string
}

// Facts prints the host fact snapshot and the candidate addresses that
// identity resolution would consider.
func Facts(ctx context.Context, opts FactsOptions) error {
	if err := report.ValidateFormat(outputOrText(opts.Output)); err != nil {
		return err
	}

	exclude, err := regexp.Compile(opts.Exclude)
	if err != nil {
		return fmt.Errorf("invalid interface exclusion pattern: %w", err)
	}

	f, err := gatherFacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to gather host facts: %w", err)
	}

	return report.NewPrinter(stdout, opts.Output).Facts(f, f.Addresses(exclude))
}

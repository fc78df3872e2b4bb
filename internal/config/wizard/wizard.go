package wizard

import (
	"context"
	"fmt"
	"slices"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	Members    []string
	Token      string
	ClientPort int
	PeerPort   int

	PeerWaitSeconds int

	Features []string

	// Only asked for when the matching feature is selected.
	CronSchedule    string
	MonitorWarning  string
	MonitorCritical string
	BackupEndpoint  string
	BackupRegion    string
	BackupBucket    string
}

// Has reports whether feature was selected.
func (r *WizardResult) Has(feature string) bool {
	return slices.Contains(r.Features, feature)
}

// RunWizard runs the interactive configuration wizard. The context is used
// for cancellation (Ctrl+C).
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := newResult()

	if err := runMembershipGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("membership: %w", err)
	}

	if err := runBootstrapGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	if err := runFeaturesGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}

	if result.Has(FeatureCron) {
		if err := runCronGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("cron: %w", err)
		}
	}

	if result.Has(FeatureMonitoring) {
		if err := runMonitoringGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("monitoring: %w", err)
		}
	}

	if result.Has(FeatureBackup) {
		if err := runBackupGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("backup: %w", err)
		}
	}

	return result, nil
}

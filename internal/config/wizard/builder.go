package wizard

import (
	"strconv"
	"strings"

	"github.com/imamik/etcdnode/internal/config"
)

// newResult returns a result preset with the configuration defaults.
func newResult() *WizardResult {
	return &WizardResult{
		Token:           config.DefaultToken,
		ClientPort:      config.DefaultClientPort,
		PeerPort:        config.DefaultPeerPort,
		PeerWaitSeconds: config.DefaultPeerWaitSeconds,
		CronSchedule:    config.DefaultCronSchedule,
	}
}

// BuildConfig converts wizard answers into a defaulted and validated
// configuration.
func BuildConfig(result *WizardResult) (*config.Config, error) {
	wait := result.PeerWaitSeconds
	cfg := &config.Config{
		Members:         append([]string(nil), result.Members...),
		Token:           strings.TrimSpace(result.Token),
		ClientPort:      result.ClientPort,
		PeerPort:        result.PeerPort,
		PeerWaitSeconds: &wait,
	}

	if result.Has(FeatureCron) {
		cfg.Cron = config.CronConfig{Enabled: true, Schedule: strings.TrimSpace(result.CronSchedule)}
	}
	if result.Has(FeatureMonitoring) {
		cfg.Monitoring = config.MonitoringConfig{
			Enabled:  true,
			Warning:  parseThreshold(result.MonitorWarning),
			Critical: parseThreshold(result.MonitorCritical),
		}
	}
	if result.Has(FeatureLeaderExporter) {
		cfg.LeaderExporter.Enabled = true
	}
	if result.Has(FeatureBackup) {
		cfg.Backup = config.BackupConfig{
			Enabled:  true,
			Endpoint: strings.TrimSpace(result.BackupEndpoint),
			Region:   strings.TrimSpace(result.BackupRegion),
			Bucket:   strings.TrimSpace(result.BackupBucket),
		}
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseThreshold(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

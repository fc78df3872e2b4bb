package wizard

import "github.com/charmbracelet/huh"

// Optional features offered by the wizard.
const (
	FeatureCron           = "cron"
	FeatureMonitoring     = "monitoring"
	FeatureLeaderExporter = "leader_exporter"
	FeatureBackup         = "backup"
)

// FeatureOption describes one optional host feature.
type FeatureOption struct {
	Value       string
	Label       string
	Description string
}

// Features lists the optional features in the order they are applied.
var Features = []FeatureOption{
	{Value: FeatureCron, Label: "Defrag cron job", Description: "Periodic etcdctl defrag of the local member"},
	{Value: FeatureMonitoring, Label: "NRPE check", Description: "Cluster membership health check for Nagios"},
	{Value: FeatureLeaderExporter, Label: "Leader exporter", Description: "Mirrors the current leader into etcd keys"},
	{Value: FeatureBackup, Label: "Pre-reset backup", Description: "Uploads the data dir to S3 before a reset purges it"},
}

// PeerWaitOptions are the offered peer wait durations in seconds.
var PeerWaitOptions = []huh.Option[int]{
	huh.NewOption("30 seconds", 30),
	huh.NewOption("60 seconds (recommended)", 60),
	huh.NewOption("120 seconds", 120),
	huh.NewOption("300 seconds", 300),
}

// FeaturesToOptions converts Features to huh options.
func FeaturesToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(Features))
	for i, f := range Features {
		opts[i] = huh.NewOption(f.Label+" - "+f.Description, f.Value)
	}
	return opts
}

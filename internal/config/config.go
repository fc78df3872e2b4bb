package config

// Config is the operator-supplied configuration for one etcd member host.
//
// The same file is deployed to every host of the cluster; each host works
// out which entry of Members it is at run time.
type Config struct {
	// Members is the static membership list. Each entry is an FQDN, a short
	// hostname, an IPv4 literal or an IPv6 literal. At least 3 entries.
	Members []string `yaml:"members"`

	// Token is passed to etcd as initial-cluster-token.
	Token string `yaml:"token,omitempty"`

	ClientPort int `yaml:"client_port,omitempty"`
	PeerPort   int `yaml:"peer_port,omitempty"`

	// Reset requests a destructive run: stop etcd, purge its data
	// directory, wait for peers, then configure.
	Reset bool `yaml:"reset,omitempty"`

	// Debug raises both the etcd log level and our own log verbosity.
	Debug bool `yaml:"debug,omitempty"`

	// AutoCompactionRetention is handed to etcd verbatim when set (e.g. "1" or "30m").
	AutoCompactionRetention string `yaml:"auto_compaction_retention,omitempty"`
	AutoCompactionMode      string `yaml:"auto_compaction_mode,omitempty"`

	// PeerWaitSeconds is how long a destructive run sleeps after the purge.
	// A pointer so that an explicit 0 survives defaulting and is rejected.
	PeerWaitSeconds *int `yaml:"peer_wait_seconds,omitempty"`

	DataDirRoot string `yaml:"data_dir_root,omitempty"`
	Service     string `yaml:"service,omitempty"`
	ConfigFile  string `yaml:"config_file,omitempty"`

	// InterfaceExclude is matched against interface names; matching
	// interfaces never contribute addresses to identity resolution.
	InterfaceExclude string `yaml:"interface_exclude,omitempty"`

	Monitoring     MonitoringConfig     `yaml:"monitoring,omitempty"`
	LeaderExporter LeaderExporterConfig `yaml:"leader_exporter,omitempty"`
	Cron           CronConfig           `yaml:"cron,omitempty"`
	Backup         BackupConfig         `yaml:"backup,omitempty"`
	Metrics        MetricsConfig        `yaml:"metrics,omitempty"`
}

// MonitoringConfig controls the NRPE command for the cluster health check.
// Thresholds are counts of dead members; nil means "no threshold".
type MonitoringConfig struct {
	Enabled  bool `yaml:"enabled,omitempty"`
	Warning  *int `yaml:"warning,omitempty"`
	Critical *int `yaml:"critical,omitempty"`
}

// LeaderExporterConfig controls the daemon that mirrors the current etcd
// leader into well-known keys.
type LeaderExporterConfig struct {
	Enabled      bool `yaml:"enabled,omitempty"`
	DelaySeconds *int `yaml:"delay_seconds,omitempty"`
}

// CronConfig controls the periodic defragmentation job.
type CronConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Schedule string `yaml:"schedule,omitempty"`
}

// BackupConfig enables an archive upload of the data directory before a
// destructive purge. Credentials come from the environment.
type BackupConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Region   string `yaml:"region,omitempty"`
	Bucket   string `yaml:"bucket,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// MetricsConfig points at a node-exporter textfile collector directory.
type MetricsConfig struct {
	TextfileDir string `yaml:"textfile_dir,omitempty"`
}

// ExporterDelay returns the leader exporter poll delay, or 0 when unset.
func (c *Config) ExporterDelay() int {
	if c.LeaderExporter.DelaySeconds == nil {
		return 0
	}
	return *c.LeaderExporter.DelaySeconds
}

// PeerWait returns the configured peer wait, or 0 when unset.
func (c *Config) PeerWait() int {
	if c.PeerWaitSeconds == nil {
		return 0
	}
	return *c.PeerWaitSeconds
}

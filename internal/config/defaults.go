package config

import (
	"fmt"

	"dario.cat/mergo"
)

const (
	// DefaultConfigPath is where apply/plan look when no --config is given.
	DefaultConfigPath = "/etc/etcdnode/etcdnode.yaml"

	DefaultToken              = "etcd-cluster"
	DefaultClientPort         = 2379
	DefaultPeerPort           = 2380
	DefaultPeerWaitSeconds    = 60
	DefaultDataDirRoot        = "/var/lib/etcd"
	DefaultService            = "etcd"
	DefaultConfigFile         = "/etc/etcd/etcd.conf.yml"
	DefaultInterfaceExclude   = `^(lo|docker0)$`
	DefaultAutoCompactionMode = "periodic"
	DefaultLeaderExportDelay  = 10
	DefaultCronSchedule       = "17 3 * * *"
	DefaultBackupPrefix       = "etcd"

	// MinMembers is the smallest cluster that survives losing one member.
	MinMembers = 3
)

// Defaults returns a Config holding the default value of every field that
// mergo can fill. The pointer fields are handled by ApplyDefaults.
func Defaults() Config {
	return Config{
		Token:              DefaultToken,
		ClientPort:         DefaultClientPort,
		PeerPort:           DefaultPeerPort,
		DataDirRoot:        DefaultDataDirRoot,
		Service:            DefaultService,
		ConfigFile:         DefaultConfigFile,
		InterfaceExclude:   DefaultInterfaceExclude,
		AutoCompactionMode: DefaultAutoCompactionMode,
		Cron: CronConfig{
			Schedule: DefaultCronSchedule,
		},
		Backup: BackupConfig{
			Prefix: DefaultBackupPrefix,
		},
	}
}

// ApplyDefaults fills every zero-valued field from Defaults.
// Fields already set, including an explicit peer_wait_seconds or
// leader_exporter.delay_seconds of 0, are kept.
func (c *Config) ApplyDefaults() error {
	defaults := Defaults()
	if err := mergo.Merge(c, defaults); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}

	// mergo treats a pointer to 0 as empty and would overwrite it.
	if c.PeerWaitSeconds == nil {
		wait := DefaultPeerWaitSeconds
		c.PeerWaitSeconds = &wait
	}
	if c.LeaderExporter.DelaySeconds == nil {
		delay := DefaultLeaderExportDelay
		c.LeaderExporter.DelaySeconds = &delay
	}
	return nil
}

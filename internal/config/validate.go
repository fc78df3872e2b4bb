package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Validate checks the configuration and returns a *ConfigurationError
// listing every problem found, or nil.
func (c *Config) Validate() error {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// --- Membership ---

	if len(c.Members) < MinMembers {
		add("members", "at least %d members are required for quorum, got %d", MinMembers, len(c.Members))
	}
	seen := make(map[string]int, len(c.Members))
	for i, m := range c.Members {
		if strings.TrimSpace(m) == "" {
			add(fmt.Sprintf("members[%d]", i), "member cannot be empty")
			continue
		}
		if m != strings.TrimSpace(m) {
			add(fmt.Sprintf("members[%d]", i), "member %q has surrounding whitespace", m)
		}
		if j, dup := seen[m]; dup {
			add(fmt.Sprintf("members[%d]", i), "duplicate of members[%d] (%s)", j, m)
			continue
		}
		seen[m] = i
	}

	// --- Ports ---

	if !validPort(c.ClientPort) {
		add("client_port", "must be between 1 and 65535, got %d", c.ClientPort)
	}
	if !validPort(c.PeerPort) {
		add("peer_port", "must be between 1 and 65535, got %d", c.PeerPort)
	}
	if c.ClientPort == c.PeerPort && validPort(c.ClientPort) {
		add("peer_port", "must differ from client_port (%d)", c.ClientPort)
	}

	// --- Bootstrap ---

	if c.PeerWaitSeconds == nil {
		add("peer_wait_seconds", "is required")
	} else if *c.PeerWaitSeconds < 1 {
		add("peer_wait_seconds", "must be at least 1, got %d", *c.PeerWaitSeconds)
	}

	if c.DataDirRoot == "" {
		add("data_dir_root", "is required")
	} else if !filepath.IsAbs(c.DataDirRoot) {
		add("data_dir_root", "must be an absolute path, got %q", c.DataDirRoot)
	} else if filepath.Clean(c.DataDirRoot) == "/" {
		add("data_dir_root", "must not be the filesystem root")
	}

	if c.Service == "" {
		add("service", "is required")
	}
	if c.ConfigFile != "" && !filepath.IsAbs(c.ConfigFile) {
		add("config_file", "must be an absolute path, got %q", c.ConfigFile)
	}
	if c.Token == "" {
		add("token", "is required")
	}

	if _, err := regexp.Compile(c.InterfaceExclude); err != nil {
		add("interface_exclude", "invalid pattern: %v", err)
	}

	// --- Optional features ---

	if c.Monitoring.Enabled {
		w, cr := c.Monitoring.Warning, c.Monitoring.Critical
		if w != nil && *w < 0 {
			add("monitoring.warning", "must not be negative")
		}
		if cr != nil && *cr < 0 {
			add("monitoring.critical", "must not be negative")
		}
		if w != nil && cr != nil && *w > *cr {
			add("monitoring.warning", "warning threshold (%d) cannot be greater than critical (%d)", *w, *cr)
		}
	}

	if c.LeaderExporter.Enabled && c.ExporterDelay() < 1 {
		add("leader_exporter.delay_seconds", "must be at least 1, got %d", c.ExporterDelay())
	}

	if c.Cron.Enabled && len(strings.Fields(c.Cron.Schedule)) != 5 {
		add("cron.schedule", "must have 5 fields, got %q", c.Cron.Schedule)
	}

	if c.Backup.Enabled {
		if c.Backup.Bucket == "" {
			add("backup.bucket", "is required when backup is enabled")
		}
		if c.Backup.Region == "" {
			add("backup.region", "is required when backup is enabled")
		}
	}

	if c.Metrics.TextfileDir != "" && !filepath.IsAbs(c.Metrics.TextfileDir) {
		add("metrics.textfile_dir", "must be an absolute path, got %q", c.Metrics.TextfileDir)
	}

	if len(errs) > 0 {
		return &ConfigurationError{Fields: errs}
	}
	return nil
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}

package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the bounded waits of a run. The peer wait is not one of
// them: it comes from the configuration file and is never shortened.
type Timeouts struct {
	ServiceStop       time.Duration // How long to wait for the unit to report inactive
	ServiceReady      time.Duration // How long to wait for the client port after a start
	Backup            time.Duration // Upper bound for archiving and uploading the data dir
	RetryMaxAttempts  int           // Attempts for read-only polls
	RetryInitialDelay time.Duration // First delay between polls
}

// LoadTimeouts loads timeout configuration from environment variables.
// If a variable is not set or invalid, the default value is used.
//
// Environment Variables:
//   - ETCDNODE_TIMEOUT_SERVICE_STOP (default: 2m)
//   - ETCDNODE_TIMEOUT_SERVICE_READY (default: 1m)
//   - ETCDNODE_TIMEOUT_BACKUP (default: 10m)
//   - ETCDNODE_RETRY_MAX_ATTEMPTS (default: 10)
//   - ETCDNODE_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ServiceStop:       parseDuration("ETCDNODE_TIMEOUT_SERVICE_STOP", 2*time.Minute),
		ServiceReady:      parseDuration("ETCDNODE_TIMEOUT_SERVICE_READY", 1*time.Minute),
		Backup:            parseDuration("ETCDNODE_TIMEOUT_BACKUP", 10*time.Minute),
		RetryMaxAttempts:  parseInt("ETCDNODE_RETRY_MAX_ATTEMPTS", 10),
		RetryInitialDelay: parseDuration("ETCDNODE_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}

	return i
}

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultEnvFile holds site overrides for timeouts and backup credentials.
const DefaultEnvFile = "/etc/default/etcdnode"

// Backup credential variables.
const (
	EnvS3AccessKey = "ETCDNODE_S3_ACCESS_KEY"
	EnvS3SecretKey = "ETCDNODE_S3_SECRET_KEY"
)

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Package handlers implements the business logic for CLI commands.
//
// Handlers are called by the command definitions in the commands package
// and are independent of the CLI framework. Collaborators are held in
// package-level factory variables so tests can replace them.
package handlers

import (
	"context"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/facts"
	"github.com/imamik/etcdnode/internal/logging"
)

// GlobalOptions are bound to the persistent flags of the root command.
type GlobalOptions struct {
	Debug     bool
	LogFormat string
	LogFile   string
	EnvFile   string
}

// Overrides are command line values that win over the configuration file.
type Overrides struct {
	Reset    bool
	PeerWait *int // nil keeps the file value
}

// Factory function variables shared by all handlers.
var (
	// stdout receives reports.
	stdout io.Writer = os.Stdout

	// newLogger builds the process logger.
	newLogger = logging.New

	// loadEnvFile loads site overrides into the environment.
	loadEnvFile = config.LoadEnvFile

	// loadConfigFile reads and defaults the configuration without validating it.
	loadConfigFile = config.LoadWithoutValidation

	// gatherFacts takes the host fact snapshot.
	gatherFacts = func(ctx context.Context) (facts.Facts, error) {
		return facts.NewGatherer().Gather(ctx)
	}
)

// loadConfig reads the configuration at path, applies overrides and
// validates the result.
func loadConfig(path string, o Overrides) (*config.Config, error) {
	if path == "" {
		path = config.DefaultConfigPath
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}

	if o.Reset {
		cfg.Reset = true
	}
	if o.PeerWait != nil {
		wait := *o.PeerWait
		cfg.PeerWaitSeconds = &wait
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger builds the logger for a command. The --debug flag also
// raises the etcd log level through cfg.
func setupLogger(g GlobalOptions, cfg *config.Config) (logr.Logger, func() error, error) {
	if g.Debug && cfg != nil {
		cfg.Debug = true
	}
	debug := g.Debug || (cfg != nil && cfg.Debug)
	return newLogger(logging.Options{
		Debug:  debug,
		Format: g.LogFormat,
		File:   g.LogFile,
	})
}

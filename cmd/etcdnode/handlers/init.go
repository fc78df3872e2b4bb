package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive wizard.
	runWizard = wizard.RunWizard

	// buildConfig converts the wizard answers into a configuration.
	buildConfig = wizard.BuildConfig

	// writeConfig writes the configuration to a file.
	writeConfig = wizard.WriteConfig
)

// Init runs the configuration wizard and writes the result to outputPath.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Fprintf(stdout, "Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg, err := buildConfig(result)
	if err != nil {
		return err
	}

	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printWelcome() {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "etcdnode - static etcd cluster members")
	fmt.Fprintln(stdout, "======================================")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "This wizard creates the configuration shared by every member.")
	fmt.Fprintln(stdout)
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Configuration saved!")
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "  File:      %s\n", outputPath)
	fmt.Fprintf(stdout, "  Members:   %s\n", strings.Join(cfg.Members, ", "))
	fmt.Fprintf(stdout, "  Ports:     client %d, peer %d\n", cfg.ClientPort, cfg.PeerPort)
	fmt.Fprintf(stdout, "  Peer wait: %ds\n", cfg.PeerWait())
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Next steps:")
	fmt.Fprintf(stdout, "  1. Copy %s to %s on every member\n", outputPath, config.DefaultConfigPath)
	fmt.Fprintln(stdout, "  2. Check each host with: etcdnode plan")
	fmt.Fprintln(stdout, "  3. Roll out with: etcdnode fleet apply -c "+outputPath+" --user root --key ~/.ssh/id_ed25519")
	fmt.Fprintln(stdout)
}

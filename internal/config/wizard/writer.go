package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/etcdnode/internal/config"
)

// now is swapped in tests.
var now = time.Now

// WriteConfig writes cfg to outputPath with a descriptive header. Values
// equal to their default are left out so the file only shows choices.
func WriteConfig(cfg *config.Config, outputPath string) error {
	data, err := MarshalMinimal(cfg)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(generateHeader())
	sb.WriteString("\n")
	sb.Write(data)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// MarshalMinimal renders cfg as YAML without default values.
func MarshalMinimal(cfg *config.Config) ([]byte, error) {
	data, err := yaml.Marshal(minimalConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// minimalConfig clears every field that equals its default. The omitempty
// tags on config.Config then drop them from the output.
func minimalConfig(cfg *config.Config) *config.Config {
	d := config.Defaults()
	out := *cfg

	if out.Token == d.Token {
		out.Token = ""
	}
	if out.ClientPort == d.ClientPort {
		out.ClientPort = 0
	}
	if out.PeerPort == d.PeerPort {
		out.PeerPort = 0
	}
	if out.PeerWaitSeconds != nil && *out.PeerWaitSeconds == config.DefaultPeerWaitSeconds {
		out.PeerWaitSeconds = nil
	}
	if out.DataDirRoot == d.DataDirRoot {
		out.DataDirRoot = ""
	}
	if out.Service == d.Service {
		out.Service = ""
	}
	if out.ConfigFile == d.ConfigFile {
		out.ConfigFile = ""
	}
	if out.InterfaceExclude == d.InterfaceExclude {
		out.InterfaceExclude = ""
	}
	if out.AutoCompactionMode == d.AutoCompactionMode {
		out.AutoCompactionMode = ""
	}
	if !out.LeaderExporter.Enabled || out.ExporterDelay() == config.DefaultLeaderExportDelay {
		out.LeaderExporter.DelaySeconds = nil
	}
	if !out.Cron.Enabled || out.Cron.Schedule == d.Cron.Schedule {
		out.Cron.Schedule = ""
	}
	if !out.Backup.Enabled || out.Backup.Prefix == d.Backup.Prefix {
		out.Backup.Prefix = ""
	}
	return &out
}

func generateHeader() string {
	var sb strings.Builder
	sb.WriteString("# etcdnode configuration\n")
	sb.WriteString(fmt.Sprintf("# Generated by 'etcdnode init' on %s\n", now().UTC().Format(time.RFC3339)))
	sb.WriteString("#\n")
	sb.WriteString("# Deploy the same file to every member, then run:\n")
	sb.WriteString("#   etcdnode apply -c " + config.DefaultConfigPath + "\n")
	sb.WriteString("# Omitted fields use their defaults; see 'etcdnode plan' for the result.\n")
	return sb.String()
}

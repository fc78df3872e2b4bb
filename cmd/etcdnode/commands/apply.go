package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/etcdnode/cmd/etcdnode/handlers"
)

// Apply returns the command that configures the local member.
//
// Optional flags:
//
//	--config, -c: Configuration file, "-" for stdin (default /etc/etcdnode/etcdnode.yaml)
//	--reset: Destructive bootstrap of this member
//	--peer-wait: Seconds to wait between purge and configure
//	--output, -o: text or json
//
// Environment variables:
//
//	ETCDNODE_S3_ACCESS_KEY, ETCDNODE_S3_SECRET_KEY: backup credentials
func Apply(global *handlers.GlobalOptions) *cobra.Command {
	opts := handlers.ApplyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Configure this etcd member",
		Long: `Configure this host's etcd member.

The host finds its own entry in the member list by FQDN, host name, IPv4
or IPv6 address, then writes the etcd configuration and makes sure etcd
is running. Optional features (defrag cron job, NRPE check, leader
exporter) are applied when enabled.

With --reset the member is rebuilt from scratch: etcd is stopped, its
data directory is purged (after an optional backup), and the run waits
for the peers to notice before configuring and starting etcd again.
Reset one member at a time.

Examples:
  # Converge using /etc/etcdnode/etcdnode.yaml
  etcdnode apply

  # Rebuild this member with a two minute peer wait
  etcdnode apply --reset --peer-wait 120

  # Read the configuration from stdin
  cat etcdnode.yaml | etcdnode apply -c -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.GlobalOptions = *global
			return handlers.Apply(cmd.Context(), opts)
		},
	}

	finish := bindOverrides(cmd, &opts.Overrides)
	cmd.PreRun = func(*cobra.Command, []string) { finish() }
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: /etc/etcdnode/etcdnode.yaml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format: text or json")

	return cmd
}

// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/etcdnode/cmd/etcdnode/handlers"
	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/logging"
)

// Root returns the root command for the etcdnode CLI.
func Root() *cobra.Command {
	global := &handlers.GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "etcdnode",
		Short:         "Bootstrap and configure members of a static etcd cluster",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&global.Debug, "debug", false, "Verbose logging and etcd debug log level")
	cmd.PersistentFlags().StringVar(&global.LogFormat, "log-format", logging.FormatConsole, "Log format: console or json")
	cmd.PersistentFlags().StringVar(&global.LogFile, "log-file", "", "Also write JSON logs to this file (rotated)")
	cmd.PersistentFlags().StringVar(&global.EnvFile, "env-file", config.DefaultEnvFile, "Env file with timeout and credential overrides")

	cmd.AddCommand(Apply(global))
	cmd.AddCommand(Plan(global))
	cmd.AddCommand(Facts())
	cmd.AddCommand(Init())
	cmd.AddCommand(Fleet(global))
	cmd.AddCommand(Version())

	return cmd
}

// bindOverrides registers --reset and --peer-wait. The returned function
// fills o after parsing; --peer-wait only counts when given.
func bindOverrides(cmd *cobra.Command, o *handlers.Overrides) func() {
	var peerWait int
	cmd.Flags().BoolVar(&o.Reset, "reset", false, "Destructive run: stop etcd, purge its data directory, wait for peers, then configure")
	cmd.Flags().IntVar(&peerWait, "peer-wait", config.DefaultPeerWaitSeconds, "Seconds to wait after the purge (overrides peer_wait_seconds)")

	return func() {
		if cmd.Flags().Changed("peer-wait") {
			o.PeerWait = &peerWait
		}
	}
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/etcdnode/cmd/etcdnode/handlers"
)

// Fleet returns the command group for operations across all members.
func Fleet(global *handlers.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fleet",
		Short: "Run etcdnode on every member over SSH",
	}
	cmd.AddCommand(fleetApply(global))
	return cmd
}

func fleetApply(global *handlers.GlobalOptions) *cobra.Command {
	opts := handlers.FleetOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the configuration on every member, one at a time",
		Long: `Apply the configuration on every member over SSH, in member list order.

Each member receives the configuration on stdin and runs
'etcdnode apply --config -'. The rollout stops at the first failing
member, so with --reset at most one member is down at any time.

Examples:
  etcdnode fleet apply -c etcdnode.yaml --user root --key ~/.ssh/id_ed25519
  etcdnode fleet apply -c etcdnode.yaml --user deploy --key deploy.pem --reset`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.GlobalOptions = *global
			return handlers.FleetApply(cmd.Context(), opts)
		},
	}

	finish := bindOverrides(cmd, &opts.Overrides)
	cmd.PreRun = func(*cobra.Command, []string) { finish() }
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: /etc/etcdnode/etcdnode.yaml)")
	cmd.Flags().StringVar(&opts.User, "user", "root", "SSH user")
	cmd.Flags().StringVar(&opts.KeyPath, "key", "", "SSH private key file")
	cmd.Flags().IntVar(&opts.Port, "port", 22, "SSH port")
	cmd.Flags().StringVar(&opts.Binary, "binary", "etcdnode", "etcdnode path on the members")
	cmd.Flags().StringSliceVar(&opts.KnownHosts, "known-hosts", nil, "known_hosts files (default: ~/.ssh/known_hosts)")
	cmd.Flags().BoolVar(&opts.InsecureHostKey, "insecure-ignore-host-key", false, "Accept any host key")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

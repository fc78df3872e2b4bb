package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/etcdnode/cmd/etcdnode/handlers"
)

// Plan returns the command that shows what apply would do.
func Plan(global *handlers.GlobalOptions) *cobra.Command {
	opts := handlers.PlanOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the identity, mode and etcd configuration apply would use",
		Long: `Resolve this host's identity and print the bootstrap plan and the
etcd parameters without changing anything.

Examples:
  etcdnode plan
  etcdnode plan --reset -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.GlobalOptions = *global
			return handlers.Plan(cmd.Context(), opts)
		},
	}

	finish := bindOverrides(cmd, &opts.Overrides)
	cmd.PreRun = func(*cobra.Command, []string) { finish() }
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: /etc/etcdnode/etcdnode.yaml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format: text or json")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/etcdnode/cmd/etcdnode/handlers"
)

// Init returns the command for interactively creating a configuration.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a configuration file",
		Long: `Interactively create the configuration shared by every member.

The wizard asks for the member list, the cluster token and ports, the
peer wait used by resets, and the optional features. Values left at
their defaults are omitted from the file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "etcdnode.yaml", "Output file path")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/etcdnode/cmd/etcdnode/handlers"
	"github.com/imamik/etcdnode/internal/config"
)

// Facts returns the command that prints the host facts.
func Facts() *cobra.Command {
	opts := handlers.FactsOptions{}

	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Print host facts used for identity resolution",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Facts(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Exclude, "exclude", config.DefaultInterfaceExclude, "Interfaces to ignore (regular expression)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format: text or json")

	return cmd
}

package cmd

import (
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "facilidrive",
		Short:             "Facility document store",
		Long:              "Per-facility hierarchical document store with category propagation and object storage.",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
	}
	cmd.AddCommand(NewRun())
	cmd.AddCommand(NewMigrate())
	cmd.AddCommand(NewBackfill())
	cmd.AddCommand(NewVersion())
	return cmd
}

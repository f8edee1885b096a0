package cmd

import (
	"fmt"
	"runtime"

	"github.com/facilidrive/facilidrive/internal/config"
	"github.com/spf13/cobra"
)

func NewVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("facilidrive %s %s/%s %s\n",
				config.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		},
	}
}

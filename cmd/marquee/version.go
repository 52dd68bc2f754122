package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/marquee/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "marquee %s (%s)\n", config.Version, runtime.Version())
		},
	}
}

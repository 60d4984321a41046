package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionCmd(env *Environment) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  argsRange(0, 0),
		// Needs no configuration.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(env.Stdout, "txt2pdf version %s\n", version)
			fmt.Fprintf(env.Stdout, "  commit: %s\n", commit)
			fmt.Fprintf(env.Stdout, "  built:  %s\n", date)
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// SetVersionInfo sets the version information from main.
func SetVersionInfo(v, c string) {
	version = v
	commit = c
}

// Version returns the version command.
func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "client-secret-invoke %s (%s)\n", version, commit)
		},
	}
}

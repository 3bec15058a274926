// Package commands defines the cobra commands of client-secret-invoke.
package commands

import "github.com/spf13/cobra"

// Root returns the root command.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "client-secret-invoke",
		Short:         "Run the Cognito client secret custom resource locally",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(Invoke())
	cmd.AddCommand(Version())

	return cmd
}

// Package cli wires the cobra commands around the sync facade.
package cli

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "plsync",
		Short:         "Keep managed prefix lists in sync with security group interfaces",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newSyncCmd(),
		newSyncAllCmd(),
		newOnboardCmd(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

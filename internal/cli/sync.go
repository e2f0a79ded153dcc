package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gllesch/plsync/pkg/plsync"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <security-group-id>",
		Short: "Reconcile a single onboarded binding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := plsync.New(cmd.Context())
			if err != nil {
				return err
			}

			result, err := syncer.Reconcile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s (+%d -%d)\n", args[0], result.Outcome, len(result.Added), len(result.Removed))
			if !result.Outcome.Clean() {
				return fmt.Errorf("sync finished with outcome %s: %w", result.Outcome, result.Err)
			}
			return nil
		},
	}
}

func newSyncAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-all",
		Short: "Reconcile every onboarded binding once",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := plsync.New(cmd.Context())
			if err != nil {
				return err
			}

			aggregate := syncer.RunAll(cmd.Context())
			if aggregate.Err != nil {
				return aggregate.Err
			}
			for _, result := range aggregate.Results {
				fmt.Printf("%s: %s (+%d -%d)\n", result.Binding.SecurityGroupID, result.Outcome, len(result.Added), len(result.Removed))
			}
			if aggregate.NeedsAttention() {
				return fmt.Errorf("run %s finished with failures", aggregate.RunID)
			}
			return nil
		},
	}
}

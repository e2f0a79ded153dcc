package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gllesch/plsync/pkg/plsync"
)

func newOnboardCmd() *cobra.Command {
	var binding plsync.Binding

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Register a security group / prefix list binding and run its first sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := plsync.New(cmd.Context())
			if err != nil {
				return err
			}

			result, err := syncer.Onboard(cmd.Context(), binding)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s (+%d -%d)\n", binding.SecurityGroupID, result.Outcome, len(result.Added), len(result.Removed))
			if !result.Outcome.Clean() {
				return fmt.Errorf("initial sync finished with outcome %s: %w", result.Outcome, result.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&binding.SecurityGroupID, "security-group", "", "security group id (required)")
	cmd.Flags().StringVar(&binding.SecurityGroupRegion, "security-group-region", "", "security group region (defaults to AWS_REGION)")
	cmd.Flags().StringVar(&binding.PrefixListID, "prefix-list", "", "managed prefix list id (required)")
	cmd.Flags().StringVar(&binding.PrefixListRegion, "prefix-list-region", "", "prefix list region (defaults to AWS_REGION)")
	cmd.Flags().IntVar(&binding.PercentThreshold, "percent-threshold", 0, "warn when headroom drops under this percent of the limit")
	cmd.Flags().IntVar(&binding.BaseThreshold, "base-threshold", 0, "warn when headroom drops under this absolute count")
	_ = cmd.MarkFlagRequired("security-group")
	_ = cmd.MarkFlagRequired("prefix-list")

	return cmd
}

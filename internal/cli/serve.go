package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/gllesch/plsync/pkg/plsync"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the fan-out on the configured schedule until signalled",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			syncer, err := plsync.New(ctx)
			if err != nil {
				return err
			}
			cfg := syncer.Config()
			log := syncer.Logger()

			runOnce := func() {
				runCtx, cancel := context.WithTimeout(ctx, cfg.Scheduler.RunTimeout)
				defer cancel()
				syncer.RunAll(runCtx)
			}

			scheduler := cron.New()
			if _, err := scheduler.AddFunc(cfg.Scheduler.Schedule, runOnce); err != nil {
				return fmt.Errorf("invalid schedule %q: %w", cfg.Scheduler.Schedule, err)
			}

			log.Info().Str("schedule", cfg.Scheduler.Schedule).Msg("starting scheduler")
			runOnce()
			scheduler.Start()

			<-ctx.Done()
			log.Info().Msg("shutting down, waiting for running pass")
			<-scheduler.Stop().Done()
			return nil
		},
	}
}

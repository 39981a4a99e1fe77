package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/synthelix-nodes/internal/application"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Bootstrap every wallet, then keep nodes running until interrupted",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, app *app, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			roster, err := application.LoadRoster(ctx, app.credentials, app.wallets, app.logger)
			if err != nil {
				return err
			}

			scheduler := application.NewScheduler(
				app.orchestrator(roster.ReferralCode),
				roster.Members,
				application.NewSessionTable(),
				app.snapshots,
				app.clock,
				app.logger,
				app.scheduleConfig(),
			)

			if once {
				failures, err := scheduler.BootstrapAll(ctx)
				if err != nil {
					return shutdown(app.logger, err)
				}
				app.logger.Info("bootstrap pass complete",
					zap.Int("wallets", len(roster.Members)),
					zap.Int("failed", len(failures)))
				if len(failures) == len(roster.Members) {
					return fmt.Errorf("all %d wallets failed to bootstrap", len(failures))
				}
				return nil
			}

			return shutdown(app.logger, scheduler.Run(ctx))
		}),
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single bootstrap pass and exit")

	return cmd
}

// shutdown turns a signal-driven cancellation into a clean exit.
func shutdown(logger *zap.Logger, err error) error {
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

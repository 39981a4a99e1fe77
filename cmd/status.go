package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	statusadapter "github.com/bnema/synthelix-nodes/internal/adapters/render/status"
	"github.com/bnema/synthelix-nodes/internal/application"
	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultStaleAfter = 10 * time.Minute

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	var live bool
	var staleAfter time.Duration

	cmd := &cobra.Command{
		Use:   "status [address]",
		Short: "Show the last recorded node state of every wallet",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, app *app, args []string) error {
			if live {
				if err := refreshSnapshots(cmd, app, asJSON); err != nil {
					return err
				}
			}

			snapshots, err := loadSnapshots(cmd.Context(), app, args)
			if err != nil {
				return err
			}

			return writeSnapshotsOutput(cmd, app, snapshots, staleAfter, asJSON)
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&live, "live", false, "Sign in and fetch the current state before rendering")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", defaultStaleAfter, "Mark snapshots older than this as stale")

	return cmd
}

func refreshSnapshots(cmd *cobra.Command, app *app, asJSON bool) error {
	roster, err := application.LoadRoster(cmd.Context(), app.credentials, app.wallets, zap.NewNop())
	if err != nil {
		return err
	}

	// Progress lines would corrupt the report on the same stream.
	quiet := *app
	quiet.logger = zap.NewNop()
	orchestrator := quiet.orchestrator(roster.ReferralCode)
	inspect := func(ctx context.Context, onProgress func(application.InspectProgress)) ([]domain.Snapshot, error) {
		return orchestrator.InspectAll(ctx, roster.Members, application.InspectOptions{
			Snapshots:    app.snapshots,
			AccountDelay: app.cfg.Schedule.AccountDelay,
			OnProgress:   onProgress,
		})
	}

	if asJSON {
		_, err := inspect(cmd.Context(), nil)
		return err
	}
	return runInspectProgress(cmd.Context(), cmd.ErrOrStderr(), len(roster.Members), inspect)
}

func loadSnapshots(ctx context.Context, app *app, args []string) ([]domain.Snapshot, error) {
	if len(args) == 0 {
		return app.snapshots.List(ctx)
	}

	snapshot, err := app.snapshots.Get(ctx, domain.AccountAddress(args[0]))
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", args[0], err)
	}
	return []domain.Snapshot{snapshot}, nil
}

func writeSnapshotsOutput(cmd *cobra.Command, app *app, snapshots []domain.Snapshot, staleAfter time.Duration, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots)
	}

	rendered, err := app.statusRenderer(snapshots, statusadapter.RenderOptions{
		Now:          app.now(),
		StaleAfter:   staleAfter,
		LowWaterMark: app.cfg.Schedule.LowWaterMark,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

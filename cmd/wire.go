package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bnema/synthelix-nodes/internal/adapters/credentials/file"
	statusadapter "github.com/bnema/synthelix-nodes/internal/adapters/render/status"
	tomlrepo "github.com/bnema/synthelix-nodes/internal/adapters/repo/toml"
	"github.com/bnema/synthelix-nodes/internal/adapters/signer/eip712"
	"github.com/bnema/synthelix-nodes/internal/adapters/synthelix"
	"github.com/bnema/synthelix-nodes/internal/application"
	"github.com/bnema/synthelix-nodes/internal/config"
	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/logging"
	"github.com/bnema/synthelix-nodes/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type rootOptions struct {
	configFile string
	logLevel   string
}

type app struct {
	cfg            config.Config
	logger         *zap.Logger
	credentials    ports.CredentialSource
	wallets        ports.WalletFactory
	snapshots      ports.SnapshotRepository
	client         ports.ServiceClient
	clock          ports.Clock
	statusRenderer func([]domain.Snapshot, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
}

func wireApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	v := viper.New()
	if opts.logLevel != "" {
		v.Set(config.KeyLogLevel, opts.logLevel)
	}

	cfg, err := config.Load(v, opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cmd.OutOrStdout(), cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	snapshots, err := tomlrepo.NewRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire snapshot repository: %w", err)
	}

	client, err := synthelix.NewClient(cfg.Service.BaseURL, cfg.Service.Timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("wire service client: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		credentials: file.NewStore(file.Paths{
			Keys:     cfg.Credentials.KeysFile,
			Proxies:  cfg.Credentials.ProxiesFile,
			Referral: cfg.Credentials.ReferralFile,
		}),
		wallets:        eip712.Factory{},
		snapshots:      snapshots,
		client:         client,
		clock:          ports.SystemClock{},
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}, nil
}

// newLogger colors output only when writing to the real stdout.
func newLogger(out io.Writer, level string) (*zap.Logger, error) {
	if out == os.Stdout {
		return logging.New(level)
	}
	return logging.NewWithWriter(level, out, false)
}

func (a *app) orchestrator(referral string) *application.Orchestrator {
	return application.NewOrchestrator(a.client, a.clock, a.logger, application.OrchestratorConfig{
		Retry:           a.retryPolicy(),
		TaskDelay:       a.cfg.Schedule.TaskDelay,
		StopSettleDelay: a.cfg.Schedule.StopSettleDelay,
		ReferralCode:    referral,
	})
}

func (a *app) retryPolicy() application.RetryPolicy {
	return application.RetryPolicy{
		MaxRetries: a.cfg.Retry.MaxRetries,
		Delay:      a.cfg.Retry.Delay,
		Multiplier: a.cfg.Retry.Multiplier,
		Jitter:     a.cfg.Retry.Jitter,
		MaxDelay:   a.cfg.Retry.MaxDelay,
	}
}

func (a *app) scheduleConfig() application.ScheduleConfig {
	return application.ScheduleConfig{
		AccountDelay:  a.cfg.Schedule.AccountDelay,
		CheckInterval: a.cfg.Schedule.CheckInterval,
		LowWaterMark:  a.cfg.Schedule.LowWaterMark,
	}
}

// withApp wires the app before running fn so flag values are already parsed.
func withApp(opts *rootOptions, fn func(cmd *cobra.Command, app *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := wireApp(cmd, opts)
		if err != nil {
			return err
		}
		defer func() { _ = app.logger.Sync() }()

		return fn(cmd, app, args)
	}
}

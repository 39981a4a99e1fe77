package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultTaskDelay       = 3 * time.Second
	DefaultStopSettleDelay = time.Second
)

// Member is one loaded account together with its signing identity.
type Member struct {
	Account domain.Account
	Wallet  ports.Wallet
}

type OrchestratorConfig struct {
	Retry           RetryPolicy
	TaskDelay       time.Duration
	StopSettleDelay time.Duration
	ReferralCode    string
	// RequiredTasks defaults to domain.RequiredTasks.
	RequiredTasks []string
	UserAgent     func() string
	Nonce         func() string
}

type timing struct {
	TaskDelay       time.Duration
	StopSettleDelay time.Duration
}

// Orchestrator owns the session lifecycle of individual accounts:
// authentication, onboarding tasks, node restarts and reward claims.
type Orchestrator struct {
	client        ports.ServiceClient
	clock         ports.Clock
	logger        *zap.Logger
	retry         RetryPolicy
	timing        timing
	referral      string
	requiredTasks []string
	userAgent     func() string
	nonce         func() string
}

func NewOrchestrator(client ports.ServiceClient, clock ports.Clock, logger *zap.Logger, cfg OrchestratorConfig) *Orchestrator {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequiredTasks == nil {
		cfg.RequiredTasks = domain.RequiredTasks
	}
	if cfg.UserAgent == nil {
		cfg.UserAgent = RandomUserAgent
	}
	if cfg.Nonce == nil {
		cfg.Nonce = NewNonce
	}

	return &Orchestrator{
		client:        client,
		clock:         clock,
		logger:        logger,
		retry:         cfg.Retry,
		timing:        timing{TaskDelay: cfg.TaskDelay, StopSettleDelay: cfg.StopSettleDelay},
		referral:      cfg.ReferralCode,
		requiredTasks: cfg.RequiredTasks,
		userAgent:     cfg.UserAgent,
		nonce:         cfg.Nonce,
	}
}

type BootstrapResult struct {
	Session  domain.Session
	Status   domain.NodeStatus
	Points   domain.PointsSummary
	Attempts int
}

// BootstrapError is the failure record of an account whose bootstrap
// exhausted its retry budget (or was cancelled) within one sweep.
type BootstrapError struct {
	Label    string
	Address  domain.AccountAddress
	Attempts int
	Err      error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap %s (%s) failed after %d attempt(s): %v", e.Label, e.Address.Short(), e.Attempts, e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// Bootstrap authenticates the account and leaves a freshly started node,
// retrying the whole sequence per the retry policy.
func (o *Orchestrator) Bootstrap(ctx context.Context, member Member) (BootstrapResult, error) {
	address := member.Wallet.Address()
	log := o.accountLogger(member.Account.Label, address)
	log.Info("processing wallet", zap.Bool("proxy", member.Account.ProxyURL != ""))

	var result BootstrapResult
	attempts, err := o.retry.retry(ctx, o.clock, retryHooks{
		onFailure: func(attempt int, err error) {
			log.Error("bootstrap attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		},
		onRetry: func(retry int, delay time.Duration) {
			log.Warn("retrying wallet", zap.Int("retry", retry), zap.Int("max_retries", o.retry.MaxRetries), zap.Duration("delay", delay))
		},
	}, func(ctx context.Context) error {
		attemptResult, err := o.bootstrapOnce(ctx, member)
		if err != nil {
			return err
		}
		result = attemptResult
		return nil
	})
	if err != nil {
		return BootstrapResult{}, &BootstrapError{Label: member.Account.Label, Address: address, Attempts: attempts, Err: err}
	}

	result.Attempts = attempts
	return result, nil
}

func (o *Orchestrator) bootstrapOnce(ctx context.Context, member Member) (BootstrapResult, error) {
	address := member.Wallet.Address()
	log := o.accountLogger(member.Account.Label, address)
	conn := domain.Connection{UserAgent: o.userAgent(), ProxyURL: member.Account.ProxyURL}

	session, err := o.authenticate(ctx, member.Wallet, member.Account.Label, conn)
	if err != nil {
		return BootstrapResult{}, err
	}
	log.Info("login successful")

	o.ReconcileTasks(ctx, session)

	if err := o.startFreshRun(ctx, session, o.NodeStatus(ctx, session)); err != nil {
		return BootstrapResult{}, err
	}
	log.Info("node started")

	o.ClaimDailyReward(ctx, session)

	status := o.NodeStatus(ctx, session)
	points := o.Points(ctx, session)
	o.logStatus(session, status, points)

	return BootstrapResult{Session: session, Status: status, Points: points}, nil
}

func (o *Orchestrator) authenticate(ctx context.Context, wallet ports.Wallet, label string, conn domain.Connection) (domain.Session, error) {
	address := wallet.Address()

	csrf, err := o.client.CSRF(ctx, conn)
	if err != nil {
		return domain.Session{}, err
	}

	now := o.clock.Now()
	signed, err := wallet.SignChallenge(domain.Challenge{
		Address:   address,
		Nonce:     o.nonce(),
		RequestID: strconv.FormatInt(now.UnixMilli(), 10),
		IssuedAt:  now,
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign challenge: %w", err)
	}

	o.accountLogger(label, address).Debug("using referral code", zap.String("referral_code", o.referral))

	cookies, err := o.client.SignIn(ctx, conn, domain.SignInRequest{
		Address:      address,
		Signed:       signed,
		CSRF:         csrf,
		ReferralCode: o.referral,
	})
	if err != nil {
		return domain.Session{}, err
	}
	if cookies == "" {
		cookies = csrf.Cookies
	}

	return domain.Session{
		Address:         address,
		Label:           label,
		Cookies:         cookies,
		Connection:      conn,
		AuthenticatedAt: now,
	}, nil
}

// startFreshRun banks unbanked credit by stopping a running node, then
// starts a new run.
func (o *Orchestrator) startFreshRun(ctx context.Context, session domain.Session, status domain.NodeStatus) error {
	log := o.accountLogger(session.Label, session.Address)

	if status.HasUnbankedCredit() {
		if err := o.client.StopNode(ctx, session, status.ClaimedHours(), status.EarnedCredits); err != nil {
			return err
		}
		log.Info("stopped node and banked credit", zap.String("points", domain.FormatPoints(status.EarnedCredits)))
		if err := o.clock.Sleep(ctx, o.timing.StopSettleDelay); err != nil {
			return err
		}
	}

	return o.client.StartNode(ctx, session)
}

// RestartCycle banks and restarts the node, then claims rewards, reconciles
// tasks and returns the refreshed snapshot. Only stop/start failures are
// returned.
func (o *Orchestrator) RestartCycle(ctx context.Context, session domain.Session, status domain.NodeStatus) (domain.NodeStatus, domain.PointsSummary, error) {
	if err := o.startFreshRun(ctx, session, status); err != nil {
		return domain.NodeStatus{}, domain.PointsSummary{}, fmt.Errorf("restart node: %w", err)
	}
	o.accountLogger(session.Label, session.Address).Info("node restarted")

	o.ClaimDailyReward(ctx, session)
	o.ReconcileTasks(ctx, session)

	return o.NodeStatus(ctx, session), o.Points(ctx, session), nil
}

func (o *Orchestrator) logStatus(session domain.Session, status domain.NodeStatus, points domain.PointsSummary) {
	o.accountLogger(session.Label, session.Address).Info(status.StateLabel(),
		zap.String("time_remaining", domain.FormatRemaining(status.SecondsRemaining)),
		zap.String("total_points", domain.FormatPoints(points.TotalPoints)),
	)
}

func (o *Orchestrator) accountLogger(label string, address domain.AccountAddress) *zap.Logger {
	return o.logger.With(zap.String("wallet", label), zap.String("address", address.Short()))
}

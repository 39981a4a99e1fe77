package application

import (
	"context"
	"errors"
	"time"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultAccountDelay  = 2 * time.Second
	DefaultCheckInterval = 60 * time.Second
	DefaultLowWaterMark  = domain.LowWaterMarkSeconds * time.Second
)

type ScheduleConfig struct {
	// AccountDelay paces consecutive accounts within a pass.
	AccountDelay time.Duration
	// CheckInterval is slept after each full sweep.
	CheckInterval time.Duration
	LowWaterMark  time.Duration
}

func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		AccountDelay:  DefaultAccountDelay,
		CheckInterval: DefaultCheckInterval,
		LowWaterMark:  DefaultLowWaterMark,
	}
}

// SweepReport counts what happened to each account during one pass.
type SweepReport struct {
	Evaluated       int
	Restarted       int
	Reauthenticated int
	Failures        []*BootstrapError
}

// Scheduler drives the orchestrator over every account, strictly one
// account at a time in load order. It checks ctx at each sweep boundary and
// at every pacing point.
type Scheduler struct {
	orchestrator *Orchestrator
	members      []Member
	table        *SessionTable
	snapshots    ports.SnapshotRepository
	clock        ports.Clock
	logger       *zap.Logger
	cfg          ScheduleConfig
}

func NewScheduler(orchestrator *Orchestrator, members []Member, table *SessionTable, snapshots ports.SnapshotRepository, clock ports.Clock, logger *zap.Logger, cfg ScheduleConfig) *Scheduler {
	if table == nil {
		table = NewSessionTable()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		orchestrator: orchestrator,
		members:      members,
		table:        table,
		snapshots:    snapshots,
		clock:        clock,
		logger:       logger,
		cfg:          cfg,
	}
}

func (s *Scheduler) Table() *SessionTable {
	return s.table
}

// Run bootstraps every account once, then sweeps forever. It returns only
// when ctx is done, with ctx's error.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.BootstrapAll(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := s.Sweep(ctx); err != nil {
			return err
		}

		s.logger.Info("sweep complete, checking again later", zap.Duration("interval", s.cfg.CheckInterval))
		if err := s.clock.Sleep(ctx, s.cfg.CheckInterval); err != nil {
			return err
		}
	}
}

// BootstrapAll runs the bootstrap sequence for every account in order.
func (s *Scheduler) BootstrapAll(ctx context.Context) ([]*BootstrapError, error) {
	var failures []*BootstrapError

	for _, member := range s.members {
		if err := ctx.Err(); err != nil {
			return failures, err
		}

		if failure := s.bootstrap(ctx, member); failure != nil {
			if ctx.Err() != nil {
				return failures, ctx.Err()
			}
			failures = append(failures, failure)
		}

		if err := s.clock.Sleep(ctx, s.cfg.AccountDelay); err != nil {
			return failures, err
		}
	}

	return failures, nil
}

// Sweep evaluates every account once.
func (s *Scheduler) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	for _, member := range s.members {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		session, ok := s.table.Get(member.Account.Address)
		if !ok {
			s.accountLogger(member).Warn("session expired, logging in again")
			if failure := s.bootstrap(ctx, member); failure != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				report.Failures = append(report.Failures, failure)
			} else {
				report.Reauthenticated++
			}
		} else {
			report.Evaluated++
			if s.evaluate(ctx, member, session) {
				report.Restarted++
			}
		}

		if err := s.clock.Sleep(ctx, s.cfg.AccountDelay); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (s *Scheduler) bootstrap(ctx context.Context, member Member) *BootstrapError {
	result, err := s.orchestrator.Bootstrap(ctx, member)
	if err != nil {
		var failure *BootstrapError
		if !errors.As(err, &failure) {
			failure = &BootstrapError{Label: member.Account.Label, Address: member.Account.Address, Err: err}
		}
		if ctx.Err() == nil {
			s.accountLogger(member).Error("wallet deferred to next sweep", zap.Int("attempts", failure.Attempts), zap.Error(failure.Err))
			s.saveSnapshot(ctx, member, domain.NodeStatus{}, domain.PointsSummary{}, failure)
		}
		return failure
	}

	s.table.Put(result.Session, result.Status, result.Points)
	s.saveSnapshot(ctx, member, result.Status, result.Points, nil)
	return nil
}

// evaluate checks one live session and restarts its node when it stopped or
// is about to expire. It reports whether a restart happened.
func (s *Scheduler) evaluate(ctx context.Context, member Member, session domain.Session) bool {
	log := s.accountLogger(member)
	status := s.orchestrator.NodeStatus(ctx, session)

	restarted := false
	var cycleErr error
	if status.NeedsRestart(s.cfg.LowWaterMark.Seconds()) {
		refreshed, points, err := s.orchestrator.RestartCycle(ctx, session, status)
		switch {
		case err == nil:
			s.table.UpdateSnapshot(session.Address, refreshed, points)
			status = refreshed
			restarted = true
		case errors.Is(err, domain.ErrUnauthorized):
			log.Warn("session rejected, logging in again next sweep", zap.Error(err))
			s.table.Invalidate(session.Address)
			cycleErr = err
		default:
			log.Error("restart cycle failed", zap.Error(err))
			cycleErr = err
		}
	}

	_, points, _ := s.table.Snapshot(session.Address)
	log.Info(status.StateLabel(),
		zap.String("time_remaining", domain.FormatRemaining(status.SecondsRemaining)),
		zap.String("total_points", domain.FormatPoints(points.TotalPoints)),
	)

	s.saveSnapshot(ctx, member, status, points, cycleErr)
	return restarted
}

func (s *Scheduler) saveSnapshot(ctx context.Context, member Member, status domain.NodeStatus, points domain.PointsSummary, lastErr error) {
	if s.snapshots == nil {
		return
	}

	snapshot := domain.Snapshot{
		Address:   member.Account.Address,
		Label:     member.Account.Label,
		Status:    status,
		Points:    points,
		UpdatedAt: s.clock.Now(),
	}
	if lastErr != nil {
		snapshot.LastError = lastErr.Error()
	}

	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		s.accountLogger(member).Warn("error saving snapshot", zap.Error(err))
	}
}

func (s *Scheduler) accountLogger(member Member) *zap.Logger {
	return s.logger.With(zap.String("wallet", member.Account.Label), zap.String("address", member.Account.Address.Short()))
}

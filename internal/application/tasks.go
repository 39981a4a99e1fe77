package application

import (
	"context"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"go.uber.org/zap"
)

// ReconcileTasks submits every required task missing from the profile. Each
// submission is independent and no error reaches the caller.
func (o *Orchestrator) ReconcileTasks(ctx context.Context, session domain.Session) {
	log := o.accountLogger(session.Label, session.Address)

	profile, err := o.client.Profile(ctx, session)
	if err != nil {
		log.Warn("error checking tasks", zap.Error(err))
		return
	}

	for _, title := range profile.MissingTasks(o.requiredTasks) {
		if ctx.Err() != nil {
			return
		}

		log.Warn("task not completed, processing", zap.String("task", title))
		credited, err := o.client.CompleteTask(ctx, session, title, domain.TaskRewardPoints)
		if err != nil {
			log.Error("error completing task", zap.String("task", title), zap.Error(err))
			continue
		}

		log.Info("task completed", zap.String("task", title), zap.String("received", domain.FormatPoints(credited)))
		if err := o.clock.Sleep(ctx, o.timing.TaskDelay); err != nil {
			return
		}
	}
}

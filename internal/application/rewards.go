package application

import (
	"context"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"go.uber.org/zap"
)

// ClaimDailyReward claims the daily points when the last claim is absent or
// at least a full period old. It reports whether a claim succeeded; failures
// are logged and reported as not claimed.
func (o *Orchestrator) ClaimDailyReward(ctx context.Context, session domain.Session) bool {
	log := o.accountLogger(session.Label, session.Address)

	profile, err := o.client.Profile(ctx, session)
	if err != nil {
		log.Warn("error claiming daily reward", zap.Error(err))
		return false
	}

	due, err := profile.DailyClaimDue(o.clock.Now())
	if err != nil {
		log.Warn("error claiming daily reward", zap.Error(err))
		return false
	}
	if !due {
		log.Info("daily reward not yet claimable")
		return false
	}

	if err := o.client.ClaimDailyReward(ctx, session, domain.DailyRewardPoints); err != nil {
		log.Warn("error claiming daily reward", zap.Error(err))
		return false
	}

	log.Info("daily reward claimed", zap.Int("points", domain.DailyRewardPoints))
	return true
}

package application

import (
	"context"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"go.uber.org/zap"
)

// NodeStatus never fails: on any error it logs a warning and returns the
// zero status (not running, nothing remaining, nothing earned).
func (o *Orchestrator) NodeStatus(ctx context.Context, session domain.Session) domain.NodeStatus {
	status, err := o.client.NodeStatus(ctx, session)
	if err != nil {
		o.accountLogger(session.Label, session.Address).Warn("error getting node status", zap.Error(err))
		return domain.NodeStatus{}
	}
	return status
}

// Points never fails: on any error it logs a warning and returns zero points.
func (o *Orchestrator) Points(ctx context.Context, session domain.Session) domain.PointsSummary {
	points, err := o.client.Points(ctx, session)
	if err != nil {
		o.accountLogger(session.Label, session.Address).Warn("error getting points", zap.Error(err))
		return domain.PointsSummary{}
	}
	return points
}

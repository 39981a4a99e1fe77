package ports

import (
	"context"

	"github.com/bnema/synthelix-nodes/internal/domain"
)

// ServiceClient is the remote dashboard surface consumed by the orchestrator.
// Implementations perform exactly one HTTP exchange per call and never retry.
type ServiceClient interface {
	CSRF(ctx context.Context, conn domain.Connection) (domain.CSRF, error)
	// SignIn returns the session cookies set by the login response, or an
	// empty string when the response sets none.
	SignIn(ctx context.Context, conn domain.Connection, req domain.SignInRequest) (string, error)
	Profile(ctx context.Context, session domain.Session) (domain.Profile, error)
	CompleteTask(ctx context.Context, session domain.Session, title string, points string) (float64, error)
	ClaimDailyReward(ctx context.Context, session domain.Session, points int) error
	NodeStatus(ctx context.Context, session domain.Session) (domain.NodeStatus, error)
	StartNode(ctx context.Context, session domain.Session) error
	StopNode(ctx context.Context, session domain.Session, claimedHours float64, pointsEarned float64) error
	Points(ctx context.Context, session domain.Session) (domain.PointsSummary, error)
}

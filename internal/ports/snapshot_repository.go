package ports

import (
	"context"

	"github.com/bnema/synthelix-nodes/internal/domain"
)

type SnapshotRepository interface {
	Save(ctx context.Context, snapshot domain.Snapshot) error
	// Get returns domain.ErrSnapshotNotFound for an unknown address.
	Get(ctx context.Context, address domain.AccountAddress) (domain.Snapshot, error)
	List(ctx context.Context) ([]domain.Snapshot, error)
}

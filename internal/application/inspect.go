package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/ports"
)

// Inspect signs in once and reads the node and points state without
// starting, stopping or claiming anything. The returned snapshot carries the
// failure text when sign-in fails.
func (o *Orchestrator) Inspect(ctx context.Context, member Member) (domain.Snapshot, error) {
	snapshot := domain.Snapshot{
		Address: member.Account.Address,
		Label:   member.Account.Label,
	}

	conn := domain.Connection{UserAgent: o.userAgent(), ProxyURL: member.Account.ProxyURL}
	session, err := o.authenticate(ctx, member.Wallet, member.Account.Label, conn)
	if err != nil {
		snapshot.UpdatedAt = o.clock.Now()
		snapshot.LastError = err.Error()
		return snapshot, err
	}

	snapshot.Status = o.NodeStatus(ctx, session)
	snapshot.Points = o.Points(ctx, session)
	snapshot.UpdatedAt = o.clock.Now()
	return snapshot, nil
}

// InspectProgress describes the account an inspection pass is about to
// sign in to. Index is 1-based.
type InspectProgress struct {
	Index   int
	Total   int
	Account domain.Account
}

type InspectOptions struct {
	// Snapshots records each result when set.
	Snapshots ports.SnapshotRepository
	// AccountDelay paces consecutive sign-ins.
	AccountDelay time.Duration
	// OnProgress is called before each account is inspected.
	OnProgress func(InspectProgress)
}

// InspectAll inspects every member in order and records each snapshot. A
// failed account does not stop the pass; a context or save error does.
func (o *Orchestrator) InspectAll(ctx context.Context, members []Member, opts InspectOptions) ([]domain.Snapshot, error) {
	out := make([]domain.Snapshot, 0, len(members))
	for i, member := range members {
		if i > 0 {
			if err := o.clock.Sleep(ctx, opts.AccountDelay); err != nil {
				return out, err
			}
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		if opts.OnProgress != nil {
			opts.OnProgress(InspectProgress{Index: i + 1, Total: len(members), Account: member.Account})
		}

		snapshot, err := o.Inspect(ctx, member)
		if err != nil && ctx.Err() != nil {
			return out, ctx.Err()
		}

		if opts.Snapshots != nil {
			if err := opts.Snapshots.Save(ctx, snapshot); err != nil {
				return out, fmt.Errorf("save snapshot %s: %w", member.Account.Label, err)
			}
		}
		out = append(out, snapshot)
	}

	return out, nil
}

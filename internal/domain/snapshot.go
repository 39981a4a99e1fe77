package domain

import "time"

// Snapshot is the last observed state of one account, persisted for the
// status command.
type Snapshot struct {
	Address   AccountAddress
	Label     string
	Status    NodeStatus
	Points    PointsSummary
	UpdatedAt time.Time
	LastError string
}

func (s Snapshot) IsStale(now time.Time, maxAge time.Duration) bool {
	if s.UpdatedAt.IsZero() {
		return true
	}

	if maxAge <= 0 {
		return false
	}

	return now.Sub(s.UpdatedAt) > maxAge
}

package application

import (
	"sync"

	"github.com/bnema/synthelix-nodes/internal/domain"
)

// SessionTable maps an account address to its live Session and the last
// observed node/points snapshot. Concurrent callers are safe; a scheduler
// owns one table per run.
type SessionTable struct {
	mu      sync.RWMutex
	entries map[domain.AccountAddress]sessionEntry
}

type sessionEntry struct {
	session domain.Session
	status  domain.NodeStatus
	points  domain.PointsSummary
}

func NewSessionTable() *SessionTable {
	return &SessionTable{entries: map[domain.AccountAddress]sessionEntry{}}
}

// Put installs session, replacing any previous Session for the address.
func (t *SessionTable) Put(session domain.Session, status domain.NodeStatus, points domain.PointsSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[session.Address] = sessionEntry{session: session, status: status, points: points}
}

func (t *SessionTable) Get(address domain.AccountAddress) (domain.Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[address]
	return entry.session, ok
}

// Snapshot returns the last stored status and points for address.
func (t *SessionTable) Snapshot(address domain.AccountAddress) (domain.NodeStatus, domain.PointsSummary, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[address]
	return entry.status, entry.points, ok
}

// UpdateSnapshot refreshes the stored snapshot without touching the Session.
func (t *SessionTable) UpdateSnapshot(address domain.AccountAddress, status domain.NodeStatus, points domain.PointsSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[address]
	if !ok {
		return
	}
	entry.status = status
	entry.points = points
	t.entries[address] = entry
}

// Invalidate drops the Session so the next sweep authenticates again.
func (t *SessionTable) Invalidate(address domain.AccountAddress) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, address)
}

func (t *SessionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.entries)
}

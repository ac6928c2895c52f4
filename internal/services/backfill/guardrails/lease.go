package guardrails

import (
	"errors"
	"sync"
)

// ErrLeaseHeld signals another run owns the tenant already.
var ErrLeaseHeld = errors.New("backfill: tenant lease already held")

// Leases is an in-process per-tenant claim registry. The weekly cron, the ops
// trigger and a TenantJoined event can each start a backup; whoever claims
// first runs, the second entrant gets ErrLeaseHeld and does nothing. One
// daemon owns a tenant's sync, so process-local state is the whole story;
// restarts drop all claims, which is correct because restarts also kill the
// runs that held them
type Leases struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

// NewLeases constructs an empty registry
func NewLeases() *Leases {
	return &Leases{held: make(map[int64]struct{})}
}

// Acquire claims a tenant and returns the release func. Release is
// idempotent; deferring it twice is harmless
func (l *Leases) Acquire(tenantID int64) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[tenantID]; taken {
		return nil, ErrLeaseHeld
	}
	l.held[tenantID] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, tenantID)
			l.mu.Unlock()
		})
	}
	return release, nil
}

// Held reports whether a tenant is currently claimed
func (l *Leases) Held(tenantID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, taken := l.held[tenantID]
	return taken
}

package limiters

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryGuard is a [Guard] held entirely in process memory. Suitable for
// single-instance deployments and tests; a restart forgets all counters.
type MemoryGuard struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	config  Config
	now     func() time.Time
}

// NewMemoryGuard creates an in-process lockout guard.
func NewMemoryGuard(cfg Config) *MemoryGuard {
	return &MemoryGuard{
		entries: make(map[string]*memoryEntry),
		config:  cfg,
		now:     time.Now,
	}
}

// entry returns the live counter for principalID, discarding it first if
// its window has passed. Callers must hold mu.
func (g *MemoryGuard) entry(principalID string) *memoryEntry {
	e, ok := g.entries[principalID]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && !g.now().Before(e.expiresAt) {
		delete(g.entries, principalID)
		return nil
	}
	return e
}

// Check implements [Guard].
func (g *MemoryGuard) Check(_ context.Context, principalID string) (bool, error) {
	if principalID == "" {
		return false, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	e := g.entry(principalID)
	return e != nil && e.count >= g.config.Threshold, nil
}

// RecordFailure implements [Guard]. The window restarts with every
// counted failure, mirroring the redis guard's per-failure TTL refresh.
func (g *MemoryGuard) RecordFailure(_ context.Context, principalID string) (bool, error) {
	if principalID == "" {
		return false, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	e := g.entry(principalID)
	if e == nil {
		e = &memoryEntry{}
		g.entries[principalID] = e
	}
	e.count++
	if g.config.Duration > 0 {
		e.expiresAt = g.now().Add(g.config.Duration)
	}

	return e.count >= g.config.Threshold, nil
}

// Reset implements [Guard].
func (g *MemoryGuard) Reset(_ context.Context, principalID string) error {
	if principalID == "" {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, principalID)
	return nil
}

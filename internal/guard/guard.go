package guard

import (
	"sort"
	"sync"
)

// Guard holds the process-wide safety switches: the global pause flag, the
// per-account ban set and the per-deal freeze set. Predicates are read on
// the hot path of nearly every operation while writes are rare and
// admin-gated, hence the RWMutex.
//
// Guard knows nothing about deals or roles; it answers pure yes/no
// questions. Admin authorization and event emission live in the market.
type Guard struct {
	mu     sync.RWMutex
	paused bool
	banned map[string]struct{}
	frozen map[uint64]struct{}
}

// New returns an empty guard: not paused, nobody banned, nothing frozen.
func New() *Guard {
	return &Guard{
		banned: make(map[string]struct{}),
		frozen: make(map[uint64]struct{}),
	}
}

// Paused reports whether the global pause flag is set.
func (g *Guard) Paused() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paused
}

// Banned reports whether the account is banned.
func (g *Guard) Banned(account string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.banned[account]
	return ok
}

// Frozen reports whether the deal id is frozen.
func (g *Guard) Frozen(id uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.frozen[id]
	return ok
}

// SetPaused sets the pause flag and reports whether the value changed.
func (g *Guard) SetPaused(v bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused == v {
		return false
	}
	g.paused = v
	return true
}

// SetBanned bans or unbans an account and reports whether the set changed.
func (g *Guard) SetBanned(account string, v bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.banned[account]
	if v == ok {
		return false
	}
	if v {
		g.banned[account] = struct{}{}
	} else {
		delete(g.banned, account)
	}
	return true
}

// SetFrozen freezes or unfreezes a deal id and reports whether the set changed.
func (g *Guard) SetFrozen(id uint64, v bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.frozen[id]
	if v == ok {
		return false
	}
	if v {
		g.frozen[id] = struct{}{}
	} else {
		delete(g.frozen, id)
	}
	return true
}

// Snapshot is a point-in-time copy of the guard state for diagnostics.
type Snapshot struct {
	Paused bool     `json:"paused"`
	Banned []string `json:"banned"`
	Frozen []uint64 `json:"frozen"`
}

// Snapshot returns a sorted copy of the current guard state.
func (g *Guard) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := Snapshot{
		Paused: g.paused,
		Banned: make([]string, 0, len(g.banned)),
		Frozen: make([]uint64, 0, len(g.frozen)),
	}
	for a := range g.banned {
		snap.Banned = append(snap.Banned, a)
	}
	for id := range g.frozen {
		snap.Frozen = append(snap.Frozen, id)
	}
	sort.Strings(snap.Banned)
	sort.Slice(snap.Frozen, func(i, j int) bool { return snap.Frozen[i] < snap.Frozen[j] })
	return snap
}

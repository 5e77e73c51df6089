// Package session keeps per-analyst state in process memory. Nothing here
// survives a restart: the ephemerality contract is that the uploaded table
// lives exactly as long as the session that owns it.
package session

import (
	"context"
	"sync"
	"time"

	"amaa/domain/core"
	"amaa/domain/dataset"
	"amaa/internal"
)

// State is one session's mutable state. The table pointer is swapped whole on
// upload and treated as read-only by every computation pass.
type State struct {
	ID         core.SessionID
	Table      *dataset.Table
	Filename   string // empty while the default dataset is active
	UploadedAt time.Time
	LastSeen   time.Time
}

// UsingDefault reports whether the session still shows the bundled dataset.
func (s *State) UsingDefault() bool {
	return s.Filename == ""
}

// Registry is the in-memory session store.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*State

	ttl          time.Duration
	defaultTable func() *dataset.Table
}

// NewRegistry creates a registry. defaultTable supplies the dataset a fresh
// session starts with.
func NewRegistry(ttl time.Duration, defaultTable func() *dataset.Table) *Registry {
	return &Registry{
		sessions:     make(map[core.SessionID]*State),
		ttl:          ttl,
		defaultTable: defaultTable,
	}
}

// GetOrCreate returns the session for id, creating a fresh one (seeded with
// the default dataset) when id is empty, unknown, or expired.
func (r *Registry) GetOrCreate(id core.SessionID) *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.sessions[id]; ok && !r.expired(state) {
		state.LastSeen = time.Now()
		return state
	}

	state := &State{
		ID:       core.NewSessionID(),
		Table:    r.defaultTable(),
		LastSeen: time.Now(),
	}
	r.sessions[state.ID] = state
	internal.DefaultLogger.Debug("[SessionRegistry] created session %s", state.ID)
	return state
}

// Get returns the session for id or core.ErrSessionNotFound.
func (r *Registry) Get(id core.SessionID) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.sessions[id]
	if !ok || r.expired(state) {
		return nil, core.ErrSessionNotFound
	}
	return state, nil
}

// SetTable swaps a session's active table after a successful upload.
func (r *Registry) SetTable(id core.SessionID, table *dataset.Table, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.sessions[id]
	if !ok || r.expired(state) {
		return core.ErrSessionNotFound
	}
	state.Table = table
	state.Filename = filename
	state.UploadedAt = time.Now()
	state.LastSeen = time.Now()
	return nil
}

// Len returns the live session count.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CleanupExpired drops sessions idle past the TTL and returns how many went.
func (r *Registry) CleanupExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, state := range r.sessions {
		if r.expired(state) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions on the given interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := r.CleanupExpired(); removed > 0 {
				internal.DefaultLogger.Info("[SessionRegistry] expired %d sessions (%d live)",
					removed, r.Len())
			}
		}
	}
}

func (r *Registry) expired(state *State) bool {
	return r.ttl > 0 && time.Since(state.LastSeen) > r.ttl
}

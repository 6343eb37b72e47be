package workflow

import "sync"

// SharedState is the process-scoped key/value store accessible to every
// executor within one run.
//
// The contract is last-writer-wins within a superstep: SharedState guards
// each key's access with a single mutex, so individual Get/Set calls never
// race, but the runtime does not serialize writes *across* executors
// running concurrently within one superstep (the scheduler delivers each
// source's messages in parallel). Coordination across executors must flow through the
// message graph, not through shared-state races; this is documented, not
// enforced.
type SharedState struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewSharedState returns an empty SharedState.
func NewSharedState() *SharedState {
	return &SharedState{data: make(map[string]any)}
}

// Get returns the value stored under key and whether it was present.
func (s *SharedState) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key, overwriting any previous value.
func (s *SharedState) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes key, if present.
func (s *SharedState) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Snapshot returns a shallow copy of all entries, for checkpointing.
func (s *SharedState) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Restore replaces the contents of the store with snapshot. Used when
// resuming from a checkpoint.
func (s *SharedState) Restore(snapshot map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]any, len(snapshot))
	for k, v := range snapshot {
		s.data[k] = v
	}
}

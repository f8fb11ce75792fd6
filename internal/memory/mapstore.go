package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
)

// MapStore implements Store in memory. Each simulation run owns one
// instance, so runs stay embarrassingly parallel with no shared
// mutable state. It is also the store used by most tests.
type MapStore struct {
	mu    sync.RWMutex
	users map[string]map[graph.Handle]State
}

// NewMapStore creates an empty in-memory store.
func NewMapStore() *MapStore {
	return &MapStore{users: make(map[string]map[graph.Handle]State)}
}

// Get returns a copy of the state for (userID, node), or nil if the
// node has never been reviewed by the user.
func (m *MapStore) Get(ctx context.Context, userID string, node graph.Handle) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.users[userID][node]
	if !ok {
		return nil, nil
	}
	out := st.Clone()
	return &out, nil
}

// Put stores the state for (userID, node), creating the entry if it
// does not exist.
func (m *MapStore) Put(ctx context.Context, userID string, node graph.Handle, st State) error {
	if userID == "" {
		return fmt.Errorf("memory: user id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	states, ok := m.users[userID]
	if !ok {
		states = make(map[graph.Handle]State)
		m.users[userID] = states
	}
	states[node] = st.Clone()
	return nil
}

// Has reports whether (userID, node) has a memory state.
func (m *MapStore) Has(ctx context.Context, userID string, node graph.Handle) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.users[userID][node]
	return ok, nil
}

// ForEach visits the user's states in ascending handle order.
func (m *MapStore) ForEach(ctx context.Context, userID string, fn func(node graph.Handle, st State) error) error {
	m.mu.RLock()
	states := m.users[userID]
	handles := make([]graph.Handle, 0, len(states))
	for h := range states {
		handles = append(handles, h)
	}
	m.mu.RUnlock()

	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for _, h := range handles {
		m.mu.RLock()
		st := states[h]
		m.mu.RUnlock()
		if err := fn(h, st.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of states the user owns.
func (m *MapStore) Count(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.users[userID]), nil
}

// Close is a no-op for the in-memory store.
func (m *MapStore) Close() error {
	return nil
}

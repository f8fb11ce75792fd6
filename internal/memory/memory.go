// Package memory defines per-(user, node) memory state and the Store
// interface for reading and writing it. A node with no entry in the
// store is "unavailable": it has never been reviewed and does not
// participate in energy propagation or cluster statistics until its
// first review creates an entry (the "introduction").
package memory

import (
	"context"
	"time"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
)

// State is the mutable per-(user, node) memory record. Energy is a
// [0, 1] proxy for recall strength; Stability and Difficulty belong to
// the pluggable spaced-repetition function and are opaque here.
type State struct {
	Energy         float64
	Stability      float64
	Difficulty     float64
	ReviewCount    int
	LastReviewedAt *time.Time // nil before first review
	NextReviewAt   *time.Time // nil before first review
}

// Introduced reports whether the state has received its first review.
func (s State) Introduced() bool {
	return s.ReviewCount > 0
}

// Clone returns a deep copy of the state. Pointer fields are copied
// by value so callers can mutate the copy freely.
func (s State) Clone() State {
	out := s
	if s.LastReviewedAt != nil {
		v := *s.LastReviewedAt
		out.LastReviewedAt = &v
	}
	if s.NextReviewAt != nil {
		v := *s.NextReviewAt
		out.NextReviewAt = &v
	}
	return out
}

// Store reads and writes memory states. Entries are created on first
// review and never deleted. Get returns nil (no error) for nodes
// without an entry; Has backs the external availability-ratio probe.
//
// ForEach visits a user's entries in ascending handle order so that
// floating-point aggregates over the store are reproducible.
type Store interface {
	Get(ctx context.Context, userID string, node graph.Handle) (*State, error)
	Put(ctx context.Context, userID string, node graph.Handle, st State) error
	Has(ctx context.Context, userID string, node graph.Handle) (bool, error)
	ForEach(ctx context.Context, userID string, fn func(node graph.Handle, st State) error) error
	Count(ctx context.Context, userID string) (int, error)
	Close() error
}

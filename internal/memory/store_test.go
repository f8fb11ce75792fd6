package memory

import (
	"context"
	"testing"
	"time"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	uids := []string{"w:bismillah", "w:rahman", "w:rahim", "v:1:1"}
	for _, uid := range uids {
		kind := graph.KindWord
		if uid == "v:1:1" {
			kind = graph.KindVerse
		}
		if _, err := b.AddNode(uid, kind, nil); err != nil {
			t.Fatalf("AddNode(%s): %v", uid, err)
		}
	}
	return b.Build()
}

func stores(t *testing.T, g *graph.Graph) map[string]Store {
	t.Helper()
	sq, err := OpenSQLiteMemory(g)
	if err != nil {
		t.Fatalf("OpenSQLiteMemory: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"map":    NewMapStore(),
		"sqlite": sq,
	}
}

func TestStorePutGet(t *testing.T) {
	g := testGraph(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	next := now.Add(72 * time.Hour)

	for name, store := range stores(t, g) {
		t.Run(name, func(t *testing.T) {
			h, _ := g.Lookup("w:bismillah")

			got, err := store.Get(ctx, "alice", h)
			if err != nil {
				t.Fatalf("Get before Put: %v", err)
			}
			if got != nil {
				t.Fatalf("Get before Put = %+v, want nil", got)
			}

			st := State{
				Energy:         0.72,
				Stability:      4.5,
				Difficulty:     5.1,
				ReviewCount:    3,
				LastReviewedAt: &now,
				NextReviewAt:   &next,
			}
			if err := store.Put(ctx, "alice", h, st); err != nil {
				t.Fatalf("Put: %v", err)
			}

			got, err = store.Get(ctx, "alice", h)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got == nil {
				t.Fatal("Get returned nil after Put")
			}
			if got.Energy != 0.72 || got.Stability != 4.5 || got.Difficulty != 5.1 {
				t.Errorf("round-trip mismatch: %+v", got)
			}
			if got.ReviewCount != 3 {
				t.Errorf("ReviewCount = %d, want 3", got.ReviewCount)
			}
			if got.LastReviewedAt == nil || !got.LastReviewedAt.Equal(now) {
				t.Errorf("LastReviewedAt = %v, want %v", got.LastReviewedAt, now)
			}
			if got.NextReviewAt == nil || !got.NextReviewAt.Equal(next) {
				t.Errorf("NextReviewAt = %v, want %v", got.NextReviewAt, next)
			}
		})
	}
}

func TestStoreUserIsolation(t *testing.T) {
	g := testGraph(t)
	ctx := context.Background()

	for name, store := range stores(t, g) {
		t.Run(name, func(t *testing.T) {
			h, _ := g.Lookup("w:rahman")
			if err := store.Put(ctx, "alice", h, State{Energy: 0.9}); err != nil {
				t.Fatalf("Put: %v", err)
			}

			got, err := store.Get(ctx, "bob", h)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != nil {
				t.Errorf("bob sees alice's state: %+v", got)
			}

			has, err := store.Has(ctx, "alice", h)
			if err != nil || !has {
				t.Errorf("Has(alice) = %v, %v, want true, nil", has, err)
			}
			has, err = store.Has(ctx, "bob", h)
			if err != nil || has {
				t.Errorf("Has(bob) = %v, %v, want false, nil", has, err)
			}
		})
	}
}

func TestStoreForEachOrder(t *testing.T) {
	g := testGraph(t)
	ctx := context.Background()

	for name, store := range stores(t, g) {
		t.Run(name, func(t *testing.T) {
			// Insert in reverse handle order.
			uids := []string{"v:1:1", "w:rahim", "w:bismillah"}
			for i, uid := range uids {
				h, _ := g.Lookup(uid)
				if err := store.Put(ctx, "alice", h, State{Energy: float64(i)}); err != nil {
					t.Fatalf("Put(%s): %v", uid, err)
				}
			}

			var visited []graph.Handle
			err := store.ForEach(ctx, "alice", func(h graph.Handle, st State) error {
				visited = append(visited, h)
				return nil
			})
			if err != nil {
				t.Fatalf("ForEach: %v", err)
			}
			if len(visited) != 3 {
				t.Fatalf("visited %d nodes, want 3", len(visited))
			}
			for i := 1; i < len(visited); i++ {
				if visited[i] <= visited[i-1] {
					t.Fatalf("ForEach order not ascending: %v", visited)
				}
			}

			count, err := store.Count(ctx, "alice")
			if err != nil || count != 3 {
				t.Errorf("Count = %d, %v, want 3, nil", count, err)
			}
		})
	}
}

func TestStateClone(t *testing.T) {
	now := time.Now().UTC()
	st := State{Energy: 0.5, LastReviewedAt: &now}
	cl := st.Clone()

	later := now.Add(time.Hour)
	*cl.LastReviewedAt = later
	if st.LastReviewedAt.Equal(later) {
		t.Error("Clone shares LastReviewedAt pointer with original")
	}
}

func TestStateIntroduced(t *testing.T) {
	if (State{}).Introduced() {
		t.Error("zero state reports introduced")
	}
	if (State{Energy: 0.01}).Introduced() {
		t.Error("energy alone should not mark a state introduced")
	}
	if !(State{ReviewCount: 1}).Introduced() {
		t.Error("reviewed state not introduced")
	}
}

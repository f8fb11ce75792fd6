package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
)

// SQLiteStore implements Store on SQLite for the long-lived serve
// mode. States are keyed by (user_id, node_uid) so they survive graph
// rebuilds; the graph translates handles at the boundary.
type SQLiteStore struct {
	db    *sql.DB
	graph *graph.Graph
	Path  string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS memory_states (
	user_id          TEXT    NOT NULL,
	node_uid         TEXT    NOT NULL,
	energy           REAL    NOT NULL DEFAULT 0,
	stability        REAL    NOT NULL DEFAULT 0,
	difficulty       REAL    NOT NULL DEFAULT 0,
	review_count     INTEGER NOT NULL DEFAULT 0,
	last_reviewed_at INTEGER,
	next_review_at   INTEGER,
	PRIMARY KEY (user_id, node_uid)
);
CREATE INDEX IF NOT EXISTS idx_memory_states_user ON memory_states(user_id);
`

// OpenSQLite opens (or creates) the store at the given path,
// configures pragmas, and applies the schema.
func OpenSQLite(path string, g *graph.Graph) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("memory: create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory: open sqlite: %w", err)
	}
	s := &SQLiteStore{db: db, graph: g, Path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenSQLiteMemory opens an in-memory store for testing.
func OpenSQLiteMemory(g *graph.Graph) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("memory: open sqlite memory: %w", err)
	}
	s := &SQLiteStore{db: db, graph: g, Path: ":memory:"}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("memory: pragma %q: %w", p, err)
		}
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("memory: apply schema: %w", err)
	}
	return nil
}

// Get returns the state for (userID, node), or nil if absent.
func (s *SQLiteStore) Get(ctx context.Context, userID string, node graph.Handle) (*State, error) {
	uid := s.graph.UID(node)
	if uid == "" {
		return nil, fmt.Errorf("%w: handle %d", graph.ErrNodeNotFound, node)
	}

	var st State
	var lastMs, nextMs sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT energy, stability, difficulty, review_count, last_reviewed_at, next_review_at
		FROM memory_states WHERE user_id = ? AND node_uid = ?
	`, userID, uid).Scan(&st.Energy, &st.Stability, &st.Difficulty, &st.ReviewCount, &lastMs, &nextMs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory: get state: %w", err)
	}
	st.LastReviewedAt = msToTime(lastMs)
	st.NextReviewAt = msToTime(nextMs)
	return &st, nil
}

// Put upserts the state for (userID, node).
func (s *SQLiteStore) Put(ctx context.Context, userID string, node graph.Handle, st State) error {
	if userID == "" {
		return fmt.Errorf("memory: user id is required")
	}
	uid := s.graph.UID(node)
	if uid == "" {
		return fmt.Errorf("%w: handle %d", graph.ErrNodeNotFound, node)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memory_states
			(user_id, node_uid, energy, stability, difficulty, review_count, last_reviewed_at, next_review_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, node_uid) DO UPDATE SET
			energy = excluded.energy,
			stability = excluded.stability,
			difficulty = excluded.difficulty,
			review_count = excluded.review_count,
			last_reviewed_at = excluded.last_reviewed_at,
			next_review_at = excluded.next_review_at
	`, userID, uid, st.Energy, st.Stability, st.Difficulty, st.ReviewCount,
		timeToMs(st.LastReviewedAt), timeToMs(st.NextReviewAt))
	if err != nil {
		return fmt.Errorf("memory: put state: %w", err)
	}
	return nil
}

// Has reports whether (userID, node) has a row.
func (s *SQLiteStore) Has(ctx context.Context, userID string, node graph.Handle) (bool, error) {
	uid := s.graph.UID(node)
	if uid == "" {
		return false, fmt.Errorf("%w: handle %d", graph.ErrNodeNotFound, node)
	}

	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM memory_states WHERE user_id = ? AND node_uid = ?", userID, uid).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("memory: has state: %w", err)
	}
	return true, nil
}

// ForEach visits the user's states in ascending handle order.
// Rows whose node_uid is no longer in the graph are skipped.
func (s *SQLiteStore) ForEach(ctx context.Context, userID string, fn func(node graph.Handle, st State) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node_uid, energy, stability, difficulty, review_count, last_reviewed_at, next_review_at
		FROM memory_states WHERE user_id = ?
	`, userID)
	if err != nil {
		return fmt.Errorf("memory: list states: %w", err)
	}
	defer rows.Close()

	type entry struct {
		h  graph.Handle
		st State
	}
	var entries []entry
	for rows.Next() {
		var uid string
		var st State
		var lastMs, nextMs sql.NullInt64
		if err := rows.Scan(&uid, &st.Energy, &st.Stability, &st.Difficulty,
			&st.ReviewCount, &lastMs, &nextMs); err != nil {
			return fmt.Errorf("memory: scan state: %w", err)
		}
		h, err := s.graph.Lookup(uid)
		if err != nil {
			continue
		}
		st.LastReviewedAt = msToTime(lastMs)
		st.NextReviewAt = msToTime(nextMs)
		entries = append(entries, entry{h: h, st: st})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Handle order, matching MapStore's reproducible iteration.
	sort.Slice(entries, func(i, j int) bool { return entries[i].h < entries[j].h })
	for _, e := range entries {
		if err := fn(e.h, e.st); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of states the user owns.
func (s *SQLiteStore) Count(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM memory_states WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("memory: count states: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func timeToMs(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func msToTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

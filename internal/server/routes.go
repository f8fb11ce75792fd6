package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/memory"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/srs"
)

func (s *Server) handleNextSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	goalID := chi.URLParam(r, "goalID")

	items, err := s.sched.NextSession(r.Context(), userID, goalID, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}

	type itemJSON struct {
		UID   string `json:"uid"`
		IsNew bool   `json:"is_new"`
	}
	out := make([]itemJSON, len(items))
	for i, item := range items {
		out[i] = itemJSON{UID: item.UID, IsNew: item.IsNew}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"items": out})
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		NodeUID    string    `json:"node_uid"`
		Grade      srs.Grade `json:"grade"`
		DurationMs int64     `json:"duration_ms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.NodeUID == "" {
		http.Error(w, `{"error":"node_uid required"}`, http.StatusBadRequest)
		return
	}
	if !req.Grade.IsValid() {
		http.Error(w, `{"error":"grade must be Again, Hard, Good, or Easy"}`, http.StatusBadRequest)
		return
	}

	st, err := s.sched.SubmitReview(r.Context(), userID, req.NodeUID, req.Grade,
		time.Duration(req.DurationMs)*time.Millisecond, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stateJSON(st))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	goalID := chi.URLParam(r, "goalID")

	stats, err := s.sched.WorkingSetStats(r.Context(), userID, goalID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"active_count":   stats.ActiveCount,
		"cluster_energy": stats.ClusterEnergy,
		"gate_state":     stats.GateState.String(),
	})
}

func (s *Server) handleMemoryProbe(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	uid := chi.URLParam(r, "uid")

	has, err := s.sched.HasMemoryState(r.Context(), userID, uid)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"uid": uid, "has_memory_state": has})
}

func stateJSON(st memory.State) map[string]any {
	out := map[string]any{
		"energy":       st.Energy,
		"stability":    st.Stability,
		"difficulty":   st.Difficulty,
		"review_count": st.ReviewCount,
	}
	if st.LastReviewedAt != nil {
		out["last_reviewed_at"] = st.LastReviewedAt.Format(time.RFC3339)
	}
	if st.NextReviewAt != nil {
		out["next_review_at"] = st.NextReviewAt.Format(time.RFC3339)
	}
	return out
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, graph.ErrNodeNotFound) || errors.Is(err, graph.ErrGoalNotFound) {
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

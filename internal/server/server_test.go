package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/config"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/logging"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/memory"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/scheduler"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	b := graph.NewBuilder()
	var handles []graph.Handle
	for _, uid := range []string{"w:a", "w:b", "w:c", "w:d"} {
		h, err := b.AddNode(uid, graph.KindWord, nil)
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		handles = append(handles, h)
	}
	if err := b.AddEdge(handles[0], handles[1], 0.5); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := b.AddGoal("fatiha", handles); err != nil {
		t.Fatalf("AddGoal: %v", err)
	}

	params := config.Default().Student
	params.SessionMin = 6
	params.SessionMax = 6
	sched := scheduler.New(b.Build(), memory.NewMapStore(), params,
		scheduler.WithLogger(logging.Discard()), scheduler.WithSeed(1))
	return New(sched, "test")
}

func getJSON(t *testing.T, s *Server, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
	}
	return rec
}

func TestHealth(t *testing.T) {
	s := testServer(t)
	var body map[string]any
	rec := getJSON(t, s, "/api/health", &body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestSessionReviewStatsFlow(t *testing.T) {
	s := testServer(t)

	var session struct {
		Items []struct {
			UID   string `json:"uid"`
			IsNew bool   `json:"is_new"`
		} `json:"items"`
	}
	rec := getJSON(t, s, "/api/users/alice/goals/fatiha/session", &session)
	if rec.Code != http.StatusOK {
		t.Fatalf("session status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(session.Items) == 0 {
		t.Fatal("empty session")
	}
	if !session.Items[0].IsNew {
		t.Error("first session item on a fresh user is not new")
	}

	reviewBody := `{"node_uid":"` + session.Items[0].UID + `","grade":"Good","duration_ms":2500}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/alice/reviews", strings.NewReader(reviewBody))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("review status = %d: %s", rec.Code, rec.Body.String())
	}
	var state map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decoding review response: %v", err)
	}
	if state["review_count"].(float64) != 1 {
		t.Errorf("review_count = %v, want 1", state["review_count"])
	}

	var stats map[string]any
	rec = getJSON(t, s, "/api/users/alice/goals/fatiha/stats", &stats)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	if stats["active_count"].(float64) != 1 {
		t.Errorf("active_count = %v, want 1", stats["active_count"])
	}
	if stats["gate_state"] == "" {
		t.Error("gate_state missing")
	}

	var probe map[string]any
	rec = getJSON(t, s, "/api/users/alice/nodes/"+session.Items[0].UID+"/memory", &probe)
	if rec.Code != http.StatusOK {
		t.Fatalf("probe status = %d", rec.Code)
	}
	if probe["has_memory_state"] != true {
		t.Errorf("probe = %v, want has_memory_state true", probe)
	}
}

func TestUnknownGoalIs404(t *testing.T) {
	s := testServer(t)
	rec := getJSON(t, s, "/api/users/alice/goals/ghost/session", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUnknownNodeIs404(t *testing.T) {
	s := testServer(t)
	rec := getJSON(t, s, "/api/users/alice/nodes/w:ghost/memory", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestReviewValidation(t *testing.T) {
	s := testServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing node", `{"grade":"Good"}`},
		{"bad grade", `{"node_uid":"w:a","grade":"Perfect"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users/alice/reviews", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

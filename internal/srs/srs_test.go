package srs

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestGradeMarshalling(t *testing.T) {
	for _, g := range []Grade{Again, Hard, Good, Easy} {
		text, err := g.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", g, err)
		}
		var back Grade
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != g {
			t.Errorf("round trip %v → %q → %v", g, text, back)
		}
	}

	var g Grade
	if err := g.UnmarshalText([]byte("Perfect")); !errors.Is(err, ErrInvalidGrade) {
		t.Errorf("unknown grade: err = %v, want ErrInvalidGrade", err)
	}
	if Grade(0).IsValid() || Grade(5).IsValid() {
		t.Error("out-of-range grade reports valid")
	}
}

func TestGradeSuccess(t *testing.T) {
	if Again.Success() {
		t.Error("Again counts as success")
	}
	for _, g := range []Grade{Hard, Good, Easy} {
		if !g.Success() {
			t.Errorf("%v does not count as success", g)
		}
	}
}

func TestUpdateFirstReview(t *testing.T) {
	update := Default()

	res, err := update(Good, 0, 0, testNow)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Stability <= 0 {
		t.Errorf("initial stability = %v, want > 0", res.Stability)
	}
	if res.Difficulty < 1 || res.Difficulty > 10 {
		t.Errorf("initial difficulty = %v, want within [1, 10]", res.Difficulty)
	}
	if !res.NextReviewAt.After(testNow) {
		t.Errorf("NextReviewAt = %v, want after %v", res.NextReviewAt, testNow)
	}
}

func TestUpdateGradeOrdering(t *testing.T) {
	update := Default()

	// Higher grades seed higher stability, so later grades push the
	// due date at least as far out.
	var prev time.Time
	for _, g := range []Grade{Again, Hard, Good, Easy} {
		res, err := update(g, 0, 0, testNow)
		if err != nil {
			t.Fatalf("update(%v): %v", g, err)
		}
		if !prev.IsZero() && res.NextReviewAt.Before(prev) {
			t.Errorf("%v due date %v earlier than lower grade's %v", g, res.NextReviewAt, prev)
		}
		prev = res.NextReviewAt
	}
}

func TestUpdateAgainShrinksStability(t *testing.T) {
	update := Default()

	seed, err := update(Good, 0, 0, testNow)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	grown, err := update(Good, seed.Stability, seed.Difficulty, testNow.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("grow: %v", err)
	}
	if grown.Stability <= seed.Stability {
		t.Errorf("success did not grow stability: %v → %v", seed.Stability, grown.Stability)
	}

	lapsed, err := update(Again, grown.Stability, grown.Difficulty, testNow.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("lapse: %v", err)
	}
	if lapsed.Stability >= grown.Stability {
		t.Errorf("lapse did not shrink stability: %v → %v", grown.Stability, lapsed.Stability)
	}
}

func TestUpdateDeterministic(t *testing.T) {
	update := Default()

	a, err := update(Good, 4.5, 5.0, testNow)
	if err != nil {
		t.Fatal(err)
	}
	b, err := update(Good, 4.5, 5.0, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same inputs gave %+v then %+v", a, b)
	}
}

func TestUpdateRejectsInvalidGrade(t *testing.T) {
	update := Default()
	if _, err := update(Grade(9), 1, 5, testNow); !errors.Is(err, ErrInvalidGrade) {
		t.Errorf("err = %v, want ErrInvalidGrade", err)
	}
}

func TestNewSchedulerValidation(t *testing.T) {
	if _, err := NewScheduler(1.2, 365); err == nil {
		t.Error("retention > 1 accepted")
	}
	if _, err := NewScheduler(0.9, 0); err == nil {
		t.Error("zero max interval accepted")
	}
}

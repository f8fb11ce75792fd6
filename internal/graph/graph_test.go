package graph

import (
	"errors"
	"testing"
)

func buildTestGraph(t *testing.T) (*Graph, map[string]Handle) {
	t.Helper()
	b := NewBuilder()
	handles := make(map[string]Handle)
	nodes := []struct {
		uid  string
		kind Kind
	}{
		{"v:1:1", KindVerse},
		{"w:bismillah", KindWord},
		{"w:rahman", KindWord},
		{"r:rhm", KindRoot},
	}
	for _, n := range nodes {
		h, err := b.AddNode(n.uid, n.kind, nil)
		if err != nil {
			t.Fatalf("AddNode(%s): %v", n.uid, err)
		}
		handles[n.uid] = h
	}
	// Verse depends on its words; words share a root. Cycle is allowed.
	mustEdge := func(src, dst string, w float64) {
		if err := b.AddEdge(handles[src], handles[dst], w); err != nil {
			t.Fatalf("AddEdge(%s→%s): %v", src, dst, err)
		}
	}
	mustEdge("v:1:1", "w:bismillah", 0.8)
	mustEdge("v:1:1", "w:rahman", 0.8)
	mustEdge("w:rahman", "r:rhm", 0.5)
	mustEdge("r:rhm", "w:rahman", 0.5)

	if err := b.AddGoal("fatiha", []Handle{handles["v:1:1"], handles["w:bismillah"], handles["w:rahman"]}); err != nil {
		t.Fatalf("AddGoal: %v", err)
	}
	return b.Build(), handles
}

func TestGraphLookup(t *testing.T) {
	g, handles := buildTestGraph(t)

	h, err := g.Lookup("w:rahman")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if h != handles["w:rahman"] {
		t.Errorf("Lookup = %d, want %d", h, handles["w:rahman"])
	}

	if _, err := g.Lookup("w:missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Lookup unknown uid: err = %v, want ErrNodeNotFound", err)
	}
}

func TestGraphOutgoing(t *testing.T) {
	g, handles := buildTestGraph(t)

	out := g.Outgoing(handles["v:1:1"])
	if len(out) != 2 {
		t.Fatalf("Outgoing(v:1:1) has %d edges, want 2", len(out))
	}
	for _, e := range out {
		if e.Weight != 0.8 {
			t.Errorf("edge weight = %v, want 0.8", e.Weight)
		}
	}

	// Cycle edges survive the build untouched.
	if len(g.Outgoing(handles["r:rhm"])) != 1 {
		t.Error("cycle edge r:rhm→w:rahman missing")
	}
}

func TestGraphGoal(t *testing.T) {
	g, _ := buildTestGraph(t)

	items, err := g.Goal("fatiha")
	if err != nil {
		t.Fatalf("Goal: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("goal has %d items, want 3", len(items))
	}

	if _, err := g.Goal("nope"); !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("Goal unknown id: err = %v, want ErrGoalNotFound", err)
	}
}

func TestBuilderRejectsDuplicateUID(t *testing.T) {
	b := NewBuilder()
	if _, err := b.AddNode("w:x", KindWord, nil); err != nil {
		t.Fatalf("first AddNode: %v", err)
	}
	if _, err := b.AddNode("w:x", KindWord, nil); !errors.Is(err, ErrDuplicateUID) {
		t.Errorf("duplicate AddNode: err = %v, want ErrDuplicateUID", err)
	}
}

func TestBuilderRejectsNegativeWeight(t *testing.T) {
	b := NewBuilder()
	a, _ := b.AddNode("a", KindWord, nil)
	c, _ := b.AddNode("b", KindWord, nil)
	if err := b.AddEdge(a, c, -0.1); err == nil {
		t.Error("negative edge weight accepted")
	}
}

func TestKindMarshalling(t *testing.T) {
	for _, k := range []Kind{KindVerse, KindWord, KindWordInstance, KindChapter, KindRoot, KindLemma, KindAxis} {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", k, err)
		}
		var back Kind
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != k {
			t.Errorf("round trip %v → %q → %v", k, text, back)
		}
	}

	var k Kind
	if err := k.UnmarshalText([]byte("sigil")); err == nil {
		t.Error("unknown kind name accepted")
	}
	if Kind(0).IsValid() {
		t.Error("zero Kind reports valid")
	}
}

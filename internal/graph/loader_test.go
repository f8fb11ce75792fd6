package graph

import (
	"errors"
	"testing"
)

const sampleGraphYAML = `
nodes:
  - uid: "c:1"
    kind: chapter
  - uid: "v:1:1"
    kind: verse
    meta:
      ref: "1:1"
  - uid: "w:bismillah"
    kind: word
edges:
  - source: "c:1"
    target: "v:1:1"
    weight: 1.0
  - source: "v:1:1"
    target: "w:bismillah"
    weight: 0.8
goals:
  - id: "fatiha"
    items: ["v:1:1", "w:bismillah"]
`

func TestParse(t *testing.T) {
	g, err := Parse([]byte(sampleGraphYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3", g.NodeCount())
	}

	h, err := g.Lookup("v:1:1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	n, err := g.Node(h)
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if n.Kind != KindVerse {
		t.Errorf("Kind = %v, want verse", n.Kind)
	}
	if n.Meta["ref"] != "1:1" {
		t.Errorf("Meta[ref] = %q, want 1:1", n.Meta["ref"])
	}

	items, err := g.Goal("fatiha")
	if err != nil || len(items) != 2 {
		t.Errorf("Goal = %v items, %v", items, err)
	}
}

func TestParseUnknownEdgeUID(t *testing.T) {
	bad := `
nodes:
  - uid: "a"
    kind: word
edges:
  - source: "a"
    target: "ghost"
    weight: 0.5
`
	if _, err := Parse([]byte(bad)); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
}

func TestParseUnknownGoalItem(t *testing.T) {
	bad := `
nodes:
  - uid: "a"
    kind: word
goals:
  - id: "g"
    items: ["a", "ghost"]
`
	if _, err := Parse([]byte(bad)); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse([]byte("nodes: []")); err == nil {
		t.Error("empty graph accepted")
	}
}

// Package graph provides the immutable weighted knowledge graph the
// scheduler operates on. Nodes are stored in an arena and addressed by
// integer handles, with per-node adjacency lists of (handle, weight)
// pairs for O(1) outgoing-edge traversal. The graph is built once by an
// external builder and is read-only afterwards, so it can be shared
// freely across concurrent simulation runs.
package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph lookups.
// Use errors.Is to check: errors.Is(err, graph.ErrNodeNotFound)
var (
	ErrNodeNotFound = errors.New("graph: node not found")
	ErrGoalNotFound = errors.New("graph: goal not found")
	ErrDuplicateUID = errors.New("graph: duplicate node uid")
)

// Handle addresses a node in the arena. Handles are dense indices
// assigned in insertion order, which doubles as curriculum order.
type Handle int32

// HalfEdge is one outgoing adjacency entry: the target node and the
// propagation weight of the edge leading to it.
type HalfEdge struct {
	Target Handle
	Weight float64
}

// Node is a single knowledge item. Meta carries static content
// metadata (surface text, translation keys, ...) that the scheduler
// itself never interprets.
type Node struct {
	UID  string
	Kind Kind
	Meta map[string]string
}

// Graph is the immutable knowledge graph. All exported methods are
// safe for concurrent use once Build has returned.
type Graph struct {
	nodes []Node
	adj   [][]HalfEdge
	byUID map[string]Handle
	goals map[string][]Handle
}

// NodeCount returns the number of nodes in the arena.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Node returns the node for a handle. Handles produced by this graph
// are always valid; out-of-range handles return ErrNodeNotFound.
func (g *Graph) Node(h Handle) (Node, error) {
	if h < 0 || int(h) >= len(g.nodes) {
		return Node{}, fmt.Errorf("%w: handle %d", ErrNodeNotFound, h)
	}
	return g.nodes[h], nil
}

// UID returns the string UID for a handle, or "" for invalid handles.
func (g *Graph) UID(h Handle) string {
	if h < 0 || int(h) >= len(g.nodes) {
		return ""
	}
	return g.nodes[h].UID
}

// Lookup resolves a node UID to its handle.
func (g *Graph) Lookup(uid string) (Handle, error) {
	h, ok := g.byUID[uid]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNodeNotFound, uid)
	}
	return h, nil
}

// Outgoing returns the outgoing adjacency list for a node. The
// returned slice is owned by the graph and must not be mutated.
func (g *Graph) Outgoing(h Handle) []HalfEdge {
	if h < 0 || int(h) >= len(g.adj) {
		return nil
	}
	return g.adj[h]
}

// Goal returns the ordered item list for a named goal. The order is
// the curriculum order new items are introduced in.
func (g *Graph) Goal(id string) ([]Handle, error) {
	items, ok := g.goals[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGoalNotFound, id)
	}
	return items, nil
}

// GoalIDs returns the IDs of all goals defined on the graph.
func (g *Graph) GoalIDs() []string {
	ids := make([]string, 0, len(g.goals))
	for id := range g.goals {
		ids = append(ids, id)
	}
	return ids
}

// Builder accumulates nodes and edges and freezes them into a Graph.
// A Builder is single-use: after Build the graph owns the arenas.
type Builder struct {
	nodes []Node
	adj   [][]HalfEdge
	byUID map[string]Handle
	goals map[string][]Handle
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		byUID: make(map[string]Handle),
		goals: make(map[string][]Handle),
	}
}

// AddNode appends a node to the arena and returns its handle.
// UIDs must be unique.
func (b *Builder) AddNode(uid string, kind Kind, meta map[string]string) (Handle, error) {
	if uid == "" {
		return 0, fmt.Errorf("graph: node uid is required")
	}
	if _, exists := b.byUID[uid]; exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateUID, uid)
	}
	h := Handle(len(b.nodes))
	b.nodes = append(b.nodes, Node{UID: uid, Kind: kind, Meta: meta})
	b.adj = append(b.adj, nil)
	b.byUID[uid] = h
	return h, nil
}

// AddEdge appends a directed edge. Weights must be non-negative;
// cycles and bidirectional pairs are permitted.
func (b *Builder) AddEdge(source, target Handle, weight float64) error {
	if int(source) >= len(b.nodes) || source < 0 {
		return fmt.Errorf("%w: edge source handle %d", ErrNodeNotFound, source)
	}
	if int(target) >= len(b.nodes) || target < 0 {
		return fmt.Errorf("%w: edge target handle %d", ErrNodeNotFound, target)
	}
	if weight < 0 {
		return fmt.Errorf("graph: edge %s -> %s has negative weight %f",
			b.nodes[source].UID, b.nodes[target].UID, weight)
	}
	b.adj[source] = append(b.adj[source], HalfEdge{Target: target, Weight: weight})
	return nil
}

// AddGoal registers an ordered goal over previously added nodes.
func (b *Builder) AddGoal(id string, items []Handle) error {
	if id == "" {
		return fmt.Errorf("graph: goal id is required")
	}
	for _, h := range items {
		if int(h) >= len(b.nodes) || h < 0 {
			return fmt.Errorf("%w: goal %q item handle %d", ErrNodeNotFound, id, h)
		}
	}
	b.goals[id] = items
	return nil
}

// Build freezes the builder into an immutable Graph.
func (b *Builder) Build() *Graph {
	g := &Graph{
		nodes: b.nodes,
		adj:   b.adj,
		byUID: b.byUID,
		goals: b.goals,
	}
	b.nodes = nil
	b.adj = nil
	b.byUID = nil
	b.goals = nil
	return g
}

package graph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// graphFile is the on-disk YAML shape produced by the external
// graph-builder. Edges and goals reference nodes by UID.
type graphFile struct {
	Nodes []nodeSpec `yaml:"nodes"`
	Edges []edgeSpec `yaml:"edges"`
	Goals []goalSpec `yaml:"goals"`
}

type nodeSpec struct {
	UID  string            `yaml:"uid"`
	Kind Kind              `yaml:"kind"`
	Meta map[string]string `yaml:"meta,omitempty"`
}

type edgeSpec struct {
	Source string  `yaml:"source"`
	Target string  `yaml:"target"`
	Weight float64 `yaml:"weight"`
}

type goalSpec struct {
	ID    string   `yaml:"id"`
	Items []string `yaml:"items"`
}

// LoadFile reads a pre-built graph from a YAML file.
// Node order in the file is curriculum order.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graph: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a graph from YAML bytes. Unknown UIDs in edges or
// goals are load-time errors, never silently dropped.
func Parse(data []byte) (*Graph, error) {
	var file graphFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("graph: parsing graph file: %w", err)
	}
	if len(file.Nodes) == 0 {
		return nil, fmt.Errorf("graph: graph file has no nodes")
	}

	b := NewBuilder()
	for _, ns := range file.Nodes {
		if _, err := b.AddNode(ns.UID, ns.Kind, ns.Meta); err != nil {
			return nil, err
		}
	}
	for _, es := range file.Edges {
		src, ok := b.byUID[es.Source]
		if !ok {
			return nil, fmt.Errorf("%w: edge source %q", ErrNodeNotFound, es.Source)
		}
		tgt, ok := b.byUID[es.Target]
		if !ok {
			return nil, fmt.Errorf("%w: edge target %q", ErrNodeNotFound, es.Target)
		}
		if err := b.AddEdge(src, tgt, es.Weight); err != nil {
			return nil, err
		}
	}
	for _, gs := range file.Goals {
		items := make([]Handle, 0, len(gs.Items))
		for _, uid := range gs.Items {
			h, ok := b.byUID[uid]
			if !ok {
				return nil, fmt.Errorf("%w: goal %q item %q", ErrNodeNotFound, gs.ID, uid)
			}
			items = append(items, h)
		}
		if err := b.AddGoal(gs.ID, items); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

package sim

import (
	"fmt"
	"time"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/config"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
)

// GoalID is the goal name the scenario graph builders register.
const GoalID = "goal"

// Scenario defines one complete simulation experiment.
type Scenario struct {
	Name    string
	Variant string // optional parameter-variant tag for trace file names
	Days    int
	Seed    int64
	UserID  string // defaults to "sim"
	GoalID  string // defaults to GoalID
	Params  config.StudentParams
	Graph   *graph.Graph
	Learner Learner

	// Start is day 0 of the simulated calendar. Zero means a fixed
	// epoch, so unconfigured scenarios still replay identically.
	Start time.Time
}

func (s *Scenario) withDefaults() Scenario {
	out := *s
	if out.UserID == "" {
		out.UserID = "sim"
	}
	if out.GoalID == "" {
		out.GoalID = GoalID
	}
	if out.Start.IsZero() {
		out.Start = time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	}
	return out
}

func (s *Scenario) validate() error {
	if s.Days < 1 {
		return fmt.Errorf("sim: scenario %q: days must be at least 1, got %d", s.Name, s.Days)
	}
	if s.Graph == nil {
		return fmt.Errorf("sim: scenario %q: graph is required", s.Name)
	}
	if s.Learner == nil {
		return fmt.Errorf("sim: scenario %q: learner is required", s.Name)
	}
	return nil
}

// ChainGraph builds n word nodes "<prefix>:0".."<prefix>:n-1" in one
// goal, each linked forward to the next with the given weight.
// Curriculum order is the build order.
func ChainGraph(prefix string, n int, weight float64) *graph.Graph {
	b := graph.NewBuilder()
	handles := make([]graph.Handle, n)
	for i := range handles {
		h, err := b.AddNode(fmt.Sprintf("%s:%d", prefix, i), graph.KindWord, nil)
		if err != nil {
			panic(err) // generated UIDs cannot collide
		}
		handles[i] = h
	}
	for i := 0; i+1 < n; i++ {
		if err := b.AddEdge(handles[i], handles[i+1], weight); err != nil {
			panic(err)
		}
	}
	if err := b.AddGoal(GoalID, handles); err != nil {
		panic(err)
	}
	return b.Build()
}

// ClusteredGraph builds clusters of fully connected word nodes, one
// goal spanning all of them. Intra-cluster edges carry the given
// weight in both directions, exercising cyclic propagation.
func ClusteredGraph(clusters, perCluster int, weight float64) *graph.Graph {
	b := graph.NewBuilder()
	var all []graph.Handle
	for c := 0; c < clusters; c++ {
		members := make([]graph.Handle, perCluster)
		for i := range members {
			h, err := b.AddNode(fmt.Sprintf("c%d:w%d", c, i), graph.KindWord, nil)
			if err != nil {
				panic(err)
			}
			members[i] = h
			all = append(all, h)
		}
		for i := range members {
			for j := range members {
				if i == j {
					continue
				}
				if err := b.AddEdge(members[i], members[j], weight); err != nil {
					panic(err)
				}
			}
		}
	}
	if err := b.AddGoal(GoalID, all); err != nil {
		panic(err)
	}
	return b.Build()
}

// Package sim provides a deterministic day-by-day harness for
// validating scheduler dynamics against backlog-explosion and stall
// failure modes.
//
// A Scenario bundles a graph, student parameters, and a synthetic
// learner; Run drives the real scheduler through the day loop with a
// run-owned seeded RNG, no mocks and no globals, producing one trace
// row per simulated day. Replaying the same (seed, params, graph)
// yields byte-identical traces.
//
// Usage:
//
//	func TestSteadyLearner(t *testing.T) {
//	    sc := sim.Scenario{
//	        Name:    "steady",
//	        Days:    60,
//	        Seed:    1,
//	        Params:  config.Default().Student,
//	        Graph:   sim.ChainGraph("w", 200, 0.4),
//	        GoalID:  sim.GoalID,
//	        Learner: sim.SteadyLearner(),
//	    }
//	    result, err := sim.Run(context.Background(), sc, nil, logging.Discard())
//	    ...
//	    sim.AssertActiveCountNonDecreasing(t, result)
//	}
package sim

package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/memory"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/scheduler"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/trace"
)

// Result collects a finished run. Store remains readable for
// assertions on final memory states.
type Result struct {
	Scenario        string
	Rows            []trace.Row
	Report          *trace.Report
	Store           *memory.MapStore
	TotalIntroduced int
}

// Run executes one scenario day by day. The run owns its RNG, its
// MapStore, and its scheduler instance, so concurrent runs share
// nothing but the immutable graph. A nil trace writer records
// nothing and writes no files. The context is checked between days;
// a day is never interrupted mid-session.
func Run(ctx context.Context, sc Scenario, w *trace.Writer, logger *slog.Logger) (*Result, error) {
	if err := sc.validate(); err != nil {
		return nil, err
	}
	sc = sc.withDefaults()

	rng := rand.New(rand.NewSource(sc.Seed))
	store := memory.NewMapStore()
	sched := scheduler.New(sc.Graph, store, sc.Params,
		scheduler.WithLogger(logger), scheduler.WithSeed(sc.Seed))

	result := &Result{Scenario: sc.Name, Store: store}

	for day := 1; day <= sc.Days; day++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sim: stopped before day %d: %w", day, err)
		}
		now := sc.Start.AddDate(0, 0, day-1)

		sessionSize := sc.Params.SessionMin
		if sc.Params.SessionMax > sc.Params.SessionMin {
			sessionSize += rng.Intn(sc.Params.SessionMax - sc.Params.SessionMin + 1)
		}

		plan, err := sched.PlanDay(ctx, sc.UserID, sc.GoalID, now, sessionSize)
		if err != nil {
			return nil, fmt.Errorf("sim: day %d: %w", day, err)
		}

		var reviewsDone, newIntroduced int
		for _, item := range plan.Session.Items {
			grade := sc.Learner.Grade(day, item.UID, stateOf(ctx, store, sc.UserID, item), rng)
			if !grade.IsValid() {
				return nil, fmt.Errorf("sim: day %d item %s: learner returned invalid grade %d", day, item.UID, int(grade))
			}
			st, err := sched.SubmitReview(ctx, sc.UserID, item.UID, grade, 0, now)
			if err != nil {
				return nil, fmt.Errorf("sim: day %d item %s: %w", day, item.UID, err)
			}
			reviewsDone++
			if st.ReviewCount == 1 {
				newIntroduced++
			}
		}
		result.TotalIntroduced += newIntroduced

		activeCount, err := store.Count(ctx, sc.UserID)
		if err != nil {
			return nil, fmt.Errorf("sim: day %d: counting actives: %w", day, err)
		}

		row := trace.Row{
			Day:                day,
			DueReviews:         plan.DueCount,
			ReviewsDone:        reviewsDone,
			NewIntroduced:      newIntroduced,
			TotalIntroduced:    result.TotalIntroduced,
			ActiveCount:        activeCount,
			ClusterEnergy:      plan.ClusterEnergy,
			GateBlocked:        plan.Reason.Blocked(),
			GateReason:         plan.Reason,
			Threshold:          sc.Params.ClusterStabilityThreshold,
			WorkingSetFactor:   plan.WorkingSetFactor,
			CapacityUsed:       plan.CapacityUsed,
			SessionSize:        sessionSize,
			DueBudget:          plan.Session.DueBudget,
			IntroBudget:        plan.Session.IntroBudget,
			DueSelected:        plan.Session.DueSelected,
			NewSelected:        plan.Session.NewSelected,
			NewItemsLimitToday: plan.Allowance,
		}
		result.Rows = append(result.Rows, row)
		if err := w.Append(row); err != nil {
			return nil, err
		}
	}

	result.Report = trace.NewReport(result.Rows)
	return result, nil
}

// RunAll executes parameter variants concurrently, one goroutine per
// scenario. Runs share only immutable graphs, so no synchronization
// beyond the result channel is needed.
func RunAll(ctx context.Context, scenarios []Scenario, traceDir string, traceEnabled bool, logger *slog.Logger) ([]*Result, error) {
	type outcome struct {
		idx int
		res *Result
		err error
	}
	ch := make(chan outcome, len(scenarios))

	for i, sc := range scenarios {
		go func(i int, sc Scenario) {
			w, err := trace.NewWriter(traceDir, sc.Name, sc.Variant, traceEnabled)
			if err != nil {
				ch <- outcome{idx: i, err: err}
				return
			}
			res, err := Run(ctx, sc, w, logger)
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			ch <- outcome{idx: i, res: res, err: err}
		}(i, sc)
	}

	results := make([]*Result, len(scenarios))
	for range scenarios {
		out := <-ch
		if out.err != nil {
			return nil, out.err
		}
		results[out.idx] = out.res
	}
	return results, nil
}

func stateOf(ctx context.Context, store *memory.MapStore, userID string, item scheduler.SessionItem) memory.State {
	st, err := store.Get(ctx, userID, item.Node)
	if err != nil || st == nil {
		return memory.State{}
	}
	return *st
}

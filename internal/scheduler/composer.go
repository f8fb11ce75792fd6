package scheduler

import "github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"

// SessionItem is one slot in the day's session.
type SessionItem struct {
	Node  graph.Handle
	UID   string
	IsNew bool
}

// SessionPlan is the composed session with the budget signals the
// trace records.
type SessionPlan struct {
	Items       []SessionItem
	DueBudget   int
	IntroBudget int
	DueSelected int
	NewSelected int
}

// Compose splits sessionSize into due and new slots and fills them.
// Due slots go to the highest-urgency candidates, new slots follow
// curriculum order. Unused slots spill over to the other side, but
// never past that side's own ceiling: new items are capped by the
// day's allowance no matter how idle the due side is, and due items
// by the candidate pool.
func Compose(g *graph.Graph, cands Candidates, sessionSize, allowance int) SessionPlan {
	if sessionSize < 0 {
		sessionSize = 0
	}
	if allowance < 0 {
		allowance = 0
	}

	introBudget := min(allowance, sessionSize)
	dueBudget := sessionSize - introBudget

	dueTake := min(dueBudget, len(cands.Due))
	newTake := min(introBudget, len(cands.New))

	// Spillover. Idle due slots admit more new items up to the
	// allowance; idle new slots admit more due reviews.
	if free := dueBudget - dueTake; free > 0 {
		newTake = min(newTake+free, min(allowance, len(cands.New)))
	}
	if free := introBudget - newTake; free > 0 {
		dueTake = min(dueTake+free, len(cands.Due))
	}

	plan := SessionPlan{
		DueBudget:   dueBudget,
		IntroBudget: introBudget,
		DueSelected: dueTake,
		NewSelected: newTake,
	}
	plan.Items = make([]SessionItem, 0, dueTake+newTake)
	for _, c := range cands.Due[:dueTake] {
		plan.Items = append(plan.Items, SessionItem{Node: c.Node, UID: g.UID(c.Node)})
	}
	for _, h := range cands.New[:newTake] {
		plan.Items = append(plan.Items, SessionItem{Node: h, UID: g.UID(h), IsNew: true})
	}
	return plan
}

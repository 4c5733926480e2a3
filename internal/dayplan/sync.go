// Package dayplan reconciles a day's task collection with the goal library.
package dayplan

import (
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// Result is a reconciled day plan and what changed to produce it.
type Result struct {
	Tasks   []domain.Task
	Added   int
	Updated int
	Dropped int
}

// Changed reports whether the plan differs from its input.
func (r Result) Changed() bool {
	return r.Added > 0 || r.Updated > 0 || r.Dropped > 0
}

// Synchronizer holds the collaborators Sync needs beyond its inputs.
type Synchronizer struct {
	NewID func() string
}

// New returns a Synchronizer minting ids with domain.NewID.
func New() *Synchronizer {
	return &Synchronizer{NewID: domain.NewID}
}

// ActiveGoals returns the goals scheduled on date, in library order.
func ActiveGoals(goals []domain.Goal, date time.Time) []domain.Goal {
	var active []domain.Goal
	for _, g := range goals {
		if g.IsActiveOn(date.Weekday()) {
			active = append(active, g)
		}
	}
	return active
}

// Sync reconciles tasks for date against goals in mode. The input slice is
// not modified. Running Sync on its own output with the same goals and mode
// returns an identical plan.
func (s *Synchronizer) Sync(date time.Time, mode domain.Mode, tasks []domain.Task, goals []domain.Goal) Result {
	active := ActiveGoals(goals, date)
	byID := make(map[string]domain.Goal, len(active))
	for _, g := range active {
		byID[g.ID] = g
	}

	var res Result
	out := make([]domain.Task, 0, len(tasks)+len(active))
	covered := make(map[string]bool, len(active))

	// Done tasks claim their goal first, so an open duplicate for the same
	// goal never survives next to a completed one.
	for _, t := range tasks {
		if t.Done && t.IsHabit() && t.GoalID != "" {
			covered[t.GoalID] = true
		}
	}

	for _, t := range tasks {
		switch {
		case t.Done:
			out = append(out, t)

		case !t.IsHabit() || t.GoalID == "":
			// Manual tasks, and legacy habit tasks with no goal link, are user-owned.
			if t.Type != mode {
				t.Type = mode
				res.Updated++
			}
			out = append(out, t)

		default:
			g, ok := byID[t.GoalID]
			if !ok || covered[t.GoalID] {
				res.Dropped++
				continue
			}
			covered[t.GoalID] = true
			text, duration := Variant(g, mode, date)
			if t.Text != text || t.Duration != duration || t.Type != mode {
				t.Text, t.Duration, t.Type = text, duration, mode
				res.Updated++
			}
			out = append(out, t)
		}
	}

	for i, g := range active {
		if covered[g.ID] {
			continue
		}
		start, err := domain.NormalizeClock(g.Time)
		if err != nil {
			start = defaultStart(i)
		}
		text, duration := Variant(g, mode, date)
		out = append(out, domain.Task{
			ID:       s.NewID(),
			Text:     text,
			Time:     start,
			Duration: duration,
			Type:     mode,
			Source:   domain.SourceHabit,
			GoalID:   g.ID,
		})
		covered[g.ID] = true
		res.Added++
	}

	domain.SortTasks(out)
	res.Tasks = out
	return res
}

package testutil

import (
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// Task options
type TaskOption func(*domain.Task)

func WithHabit(goalID string) TaskOption {
	return func(t *domain.Task) {
		t.Source = domain.SourceHabit
		t.GoalID = goalID
	}
}

func WithMode(m domain.Mode) TaskOption {
	return func(t *domain.Task) { t.Type = m }
}

func WithDuration(min int) TaskOption {
	return func(t *domain.Task) { t.Duration = min }
}

func WithDone(review string) TaskOption {
	return func(t *domain.Task) {
		t.Done = true
		t.Review = review
		t.CompletedAt = domain.At(time.Now())
	}
}

func WithTaskID(id string) TaskOption {
	return func(t *domain.Task) { t.ID = id }
}

// NewTestTask builds a green manual task of 60 minutes unless options say otherwise.
func NewTestTask(text, clock string, opts ...TaskOption) domain.Task {
	t := domain.NewManualTask(text, clock, domain.ManualDurationMin, domain.ModeGreen)
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Goal options
type GoalOption func(*domain.Goal)

// WithFrequency sets the active weekdays; no arguments leaves the goal with none.
func WithFrequency(days ...int) GoalOption {
	return func(g *domain.Goal) { g.Frequency = domain.NewWeekdays(days...) }
}

func WithGoalTime(clock string) GoalOption {
	return func(g *domain.Goal) { g.Time = clock }
}

func WithTexts(green, blue string) GoalOption {
	return func(g *domain.Goal) {
		g.Green = green
		g.Blue = blue
	}
}

func WithAdvance(stage int, lastUpdate time.Time) GoalOption {
	return func(g *domain.Goal) {
		g.PlanMode = domain.PlanAdvance
		g.StageCount = stage
		g.LastUpdate = domain.At(lastUpdate)
	}
}

func WithRoutine(entries ...domain.RoutineEntry) GoalOption {
	return func(g *domain.Goal) { g.DailyRoutine = entries }
}

func WithCreatedAt(t time.Time) GoalOption {
	return func(g *domain.Goal) { g.CreatedAt = domain.At(t) }
}

func WithPaused() GoalOption {
	return func(g *domain.Goal) { g.Paused = true }
}

func WithGoalID(id string) GoalOption {
	return func(g *domain.Goal) { g.ID = id }
}

// NewTestGoal builds a valid loop goal active every day.
func NewTestGoal(title string, opts ...GoalOption) *domain.Goal {
	now := time.Now()
	g := &domain.Goal{
		ID:        domain.NewID(),
		Title:     title,
		Frequency: domain.EveryDay(),
		Green:     title + " (green)",
		Blue:      title + " (blue)",
		PlanMode:  domain.PlanLoop,
		CreatedAt: domain.At(now),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

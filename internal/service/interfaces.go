package service

import (
	"context"
	"io"
	"time"

	"github.com/alexanderramin/lifeos/internal/checkin"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/energy"
	"github.com/alexanderramin/lifeos/internal/planner"
	"github.com/alexanderramin/lifeos/internal/progression"
	"github.com/alexanderramin/lifeos/internal/timeline"
)

// DayView is a synchronized day: its resolved mode and ordered tasks.
type DayView struct {
	Date  time.Time
	Mode  energy.Resolution
	Tasks []domain.Task

	Added   int
	Updated int
	Dropped int
}

// TaskEdit lists the fields to change on a task. Nil fields are kept.
type TaskEdit struct {
	Text     *string
	Time     *string
	Duration *int
}

type DayPlanService interface {
	// Sync reconciles the day's tasks with the goal library in mode and
	// persists the result.
	Sync(ctx context.Context, date time.Time, mode domain.Mode) (*DayView, error)
	// OpenDay resolves the day's mode and synchronizes it.
	OpenDay(ctx context.Context, date time.Time) (*DayView, error)
	Tasks(ctx context.Context, date time.Time) ([]domain.Task, error)

	AddTask(ctx context.Context, date time.Time, text, clock string, duration int) (domain.Task, error)
	ResizeTask(ctx context.Context, date time.Time, id string, duration int) (domain.Task, error)
	MoveTask(ctx context.Context, date time.Time, id, clock string) (domain.Task, error)
	EditTask(ctx context.Context, date time.Time, id string, edit TaskEdit) (domain.Task, error)
	DeleteTask(ctx context.Context, date time.Time, id string) error
	// ApplyEffect persists a final gesture effect from the timeline.
	ApplyEffect(ctx context.Context, date time.Time, eff timeline.Effect) (domain.Task, error)
}

type EnergyService interface {
	ResolveMode(ctx context.Context, date time.Time) (energy.Resolution, error)
	Profile(ctx context.Context) (domain.Weekdays, bool, error)
	SetProfile(ctx context.Context, blueDays []int) error
	SetOverride(ctx context.Context, date time.Time, m domain.Mode) (*DayView, error)
	ClearOverride(ctx context.Context, date time.Time) (*DayView, error)
	ToggleMode(ctx context.Context, date time.Time) (*DayView, error)
	// Checkin records the morning energy level for date.
	Checkin(ctx context.Context, date time.Time, level int) (*DayView, error)
	NeedsCheckin(ctx context.Context, today time.Time) (bool, error)
}

type GoalService interface {
	Create(ctx context.Context, g *domain.Goal) error
	List(ctx context.Context) ([]domain.Goal, error)
	Get(ctx context.Context, id string) (*domain.Goal, error)
	Update(ctx context.Context, g *domain.Goal) error
	Delete(ctx context.Context, id string) error
	Pause(ctx context.Context, id string) (*domain.Goal, error)
	Resume(ctx context.Context, id string) (*domain.Goal, error)
	// Draft asks the plan generator for a new goal without saving it.
	Draft(ctx context.Context, description string, mode domain.PlanMode) (*planner.Proposal, error)
}

type CheckinService interface {
	Begin(ctx context.Context, date time.Time, taskID string) (*checkin.Review, error)
	Confirm(ctx context.Context, r *checkin.Review, review string, rating int) (domain.Task, error)
	// Complete runs Begin and Confirm in one step.
	Complete(ctx context.Context, date time.Time, taskID, review string, rating int) (domain.Task, error)
	Undo(ctx context.Context, date time.Time, taskID string) (domain.Task, error)
}

// GoalStreak is a goal with its freshly computed streak.
type GoalStreak struct {
	Goal   domain.Goal
	Streak int
}

type ProgressionService interface {
	Streak(ctx context.Context, goalID string) (int, error)
	RefreshStreaks(ctx context.Context) ([]GoalStreak, error)
	// Recent returns the goal's day statuses for the last n days, oldest first.
	Recent(ctx context.Context, goalID string, n int) ([]progression.DayStatus, error)
	Advance(ctx context.Context, goalID string, rating domain.Rating) (*domain.Goal, error)
}

type ExportService interface {
	ExportWeek(ctx context.Context, from time.Time, w io.Writer) (int, error)
}

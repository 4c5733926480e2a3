package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/lifeos/internal/checkin"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/progression"
	"github.com/alexanderramin/lifeos/internal/repository"
)

type checkinService struct {
	plans    repository.DayPlanRepo
	goals    repository.GoalRepo
	locks    *repository.KeyLocks
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewCheckinService(
	plans repository.DayPlanRepo,
	goals repository.GoalRepo,
	locks *repository.KeyLocks,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) CheckinService {
	if locks == nil {
		locks = repository.NewKeyLocks()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &checkinService{
		plans:    plans,
		goals:    goals,
		locks:    locks,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *checkinService) Begin(ctx context.Context, date time.Time, taskID string) (*checkin.Review, error) {
	tasks, err := s.plans.Load(ctx, date)
	if err != nil {
		return nil, err
	}
	i := domain.FindTask(tasks, taskID)
	if i < 0 {
		return nil, fmt.Errorf("task %s on %s: %w", taskID, domain.DateKey(date), ErrTaskNotFound)
	}
	return checkin.Begin(tasks[i], date)
}

// Confirm completes the reviewed task as currently stored. For habit tasks
// the owning goal gets a history record and a refreshed streak.
func (s *checkinService) Confirm(ctx context.Context, r *checkin.Review, review string, rating int) (task domain.Task, err error) {
	fields := map[string]any{"date": domain.DateKey(r.Date), "task": r.Task.ID}
	defer observe(ctx, s.observer, "confirm-task", time.Now(), fields, &err)

	if r.State() != checkin.StateReviewing {
		return domain.Task{}, checkin.ErrNotReviewing
	}

	unlock := s.locks.Lock(repository.TasksKey(r.Date))
	tasks, err := s.plans.Load(ctx, r.Date)
	if err != nil {
		unlock()
		return domain.Task{}, err
	}
	i := domain.FindTask(tasks, r.Task.ID)
	switch {
	case i < 0:
		err = fmt.Errorf("task %s on %s: %w", r.Task.ID, domain.DateKey(r.Date), ErrTaskNotFound)
	case tasks[i].Done:
		err = fmt.Errorf("task %s: %w", r.Task.ID, checkin.ErrAlreadyDone)
	}
	if err != nil {
		unlock()
		return domain.Task{}, err
	}

	// Edits made to the task while it was in review are kept.
	r.Task = tasks[i]
	task, err = r.Confirm(review, rating, time.Now())
	if err != nil {
		unlock()
		return domain.Task{}, err
	}
	tasks[i] = task
	err = s.plans.Save(ctx, r.Date, tasks)
	unlock()
	if err != nil {
		return domain.Task{}, fmt.Errorf("saving day %s: %w", domain.DateKey(r.Date), err)
	}

	if task.IsHabit() {
		fields["habit"] = true
		err = s.updateGoal(ctx, task, func(g *domain.Goal) {
			checkin.AppendRecord(g, checkin.NewRecord(r.Date, task, rating))
		})
	}
	return task, err
}

func (s *checkinService) Complete(ctx context.Context, date time.Time, taskID, review string, rating int) (domain.Task, error) {
	r, err := s.Begin(ctx, date, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	return s.Confirm(ctx, r, review, rating)
}

// Undo reopens a done task and removes its history record.
func (s *checkinService) Undo(ctx context.Context, date time.Time, taskID string) (task domain.Task, err error) {
	defer observe(ctx, s.observer, "undo-task", time.Now(), map[string]any{"date": domain.DateKey(date), "task": taskID}, &err)

	unlock := s.locks.Lock(repository.TasksKey(date))
	tasks, err := s.plans.Load(ctx, date)
	if err != nil {
		unlock()
		return domain.Task{}, err
	}
	i := domain.FindTask(tasks, taskID)
	if i < 0 {
		unlock()
		return domain.Task{}, fmt.Errorf("task %s on %s: %w", taskID, domain.DateKey(date), ErrTaskNotFound)
	}
	task, err = checkin.Undo(tasks[i])
	if err != nil {
		unlock()
		return domain.Task{}, err
	}
	tasks[i] = task
	err = s.plans.Save(ctx, date, tasks)
	unlock()
	if err != nil {
		return domain.Task{}, fmt.Errorf("saving day %s: %w", domain.DateKey(date), err)
	}

	if task.IsHabit() {
		key := domain.DateKey(date)
		err = s.updateGoal(ctx, task, func(g *domain.Goal) {
			checkin.RemoveRecord(g, key, task.ID)
		})
	}
	return task, err
}

// updateGoal applies fn to the goal owning t, then refreshes its streak. A
// task without an owning goal is logged and skipped.
func (s *checkinService) updateGoal(ctx context.Context, t domain.Task, fn func(*domain.Goal)) error {
	unlock := s.locks.Lock(repository.KeyGoals)
	defer unlock()

	goals, err := s.goals.List(ctx)
	if err != nil {
		return err
	}
	i, match := checkin.OwningGoal(t, goals)
	switch match {
	case checkin.MatchNone, checkin.MatchAmbiguous:
		s.logger.WarnContext(ctx, "no owning goal for habit task; history not recorded",
			slog.String("task", t.ID),
			slog.String("goal", t.GoalID),
			slog.String("match", match.String()))
		return nil
	case checkin.MatchByText:
		s.logger.InfoContext(ctx, "habit task matched to goal by text",
			slog.String("task", t.ID), slog.String("goal", goals[i].ID))
	}

	g := &goals[i]
	fn(g)
	today := domain.StartOfDay(time.Now())
	plans, err := s.plans.ListRange(ctx, today.AddDate(0, 0, -(progression.StreakWindowDays-1)), progression.StreakWindowDays)
	if err != nil {
		return err
	}
	g.Streak = progression.Streak(*g, plans, today)
	return s.goals.SaveAll(ctx, goals)
}

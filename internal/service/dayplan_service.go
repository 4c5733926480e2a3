package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/dayplan"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/energy"
	"github.com/alexanderramin/lifeos/internal/repository"
	"github.com/alexanderramin/lifeos/internal/timeline"
)

// ErrTaskNotFound is returned when a task id is not on the given day.
var ErrTaskNotFound = errors.New("task not found")

// NewTaskText is the text of a task created by tapping the timeline.
const NewTaskText = "New task"

type dayPlanService struct {
	plans    repository.DayPlanRepo
	goals    repository.GoalRepo
	resolver *energy.Resolver
	sync     *dayplan.Synchronizer
	locks    *repository.KeyLocks
	observer UseCaseObserver
}

func NewDayPlanService(
	plans repository.DayPlanRepo,
	goals repository.GoalRepo,
	modes repository.EnergyRepo,
	locks *repository.KeyLocks,
	observers ...UseCaseObserver,
) DayPlanService {
	if locks == nil {
		locks = repository.NewKeyLocks()
	}
	return &dayPlanService{
		plans:    plans,
		goals:    goals,
		resolver: energy.NewResolver(modes),
		sync:     dayplan.New(),
		locks:    locks,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *dayPlanService) OpenDay(ctx context.Context, date time.Time) (*DayView, error) {
	res, err := s.resolver.Resolve(ctx, date)
	if err != nil {
		return nil, err
	}
	view, err := s.Sync(ctx, date, res.Mode)
	if err != nil {
		return nil, err
	}
	view.Mode = res
	return view, nil
}

func (s *dayPlanService) Sync(ctx context.Context, date time.Time, mode domain.Mode) (view *DayView, err error) {
	fields := map[string]any{"date": domain.DateKey(date), "mode": string(mode)}
	defer observe(ctx, s.observer, "sync-day", time.Now(), fields, &err)

	if !mode.Valid() {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	goals, err := s.goals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading goals: %w", err)
	}

	unlock := s.locks.Lock(repository.TasksKey(date))
	defer unlock()

	tasks, err := s.plans.Load(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("loading day %s: %w", domain.DateKey(date), err)
	}
	res := s.sync.Sync(date, mode, tasks, goals)
	if err = s.plans.Save(ctx, date, res.Tasks); err != nil {
		return nil, fmt.Errorf("saving day %s: %w", domain.DateKey(date), err)
	}

	fields["added"], fields["updated"], fields["dropped"] = res.Added, res.Updated, res.Dropped
	return &DayView{
		Date:    domain.StartOfDay(date),
		Mode:    energy.Resolution{Mode: mode},
		Tasks:   res.Tasks,
		Added:   res.Added,
		Updated: res.Updated,
		Dropped: res.Dropped,
	}, nil
}

func (s *dayPlanService) Tasks(ctx context.Context, date time.Time) ([]domain.Task, error) {
	return s.plans.Load(ctx, date)
}

func (s *dayPlanService) AddTask(ctx context.Context, date time.Time, text, clock string, duration int) (task domain.Task, err error) {
	defer observe(ctx, s.observer, "add-task", time.Now(), map[string]any{"date": domain.DateKey(date)}, &err)

	if duration == 0 {
		duration = domain.ManualDurationMin
	}
	res, err := s.resolver.Resolve(ctx, date)
	if err != nil {
		return domain.Task{}, err
	}
	if c, cerr := domain.NormalizeClock(clock); cerr == nil {
		clock = c
	}
	task = domain.NewManualTask(strings.TrimSpace(text), clock, duration, res.Mode)
	if err = task.Validate(); err != nil {
		return domain.Task{}, err
	}
	err = s.update(ctx, date, func(tasks []domain.Task) ([]domain.Task, error) {
		return append(tasks, task), nil
	})
	return task, err
}

func (s *dayPlanService) ResizeTask(ctx context.Context, date time.Time, id string, duration int) (domain.Task, error) {
	return s.EditTask(ctx, date, id, TaskEdit{Duration: &duration})
}

func (s *dayPlanService) MoveTask(ctx context.Context, date time.Time, id, clock string) (domain.Task, error) {
	return s.EditTask(ctx, date, id, TaskEdit{Time: &clock})
}

func (s *dayPlanService) EditTask(ctx context.Context, date time.Time, id string, edit TaskEdit) (task domain.Task, err error) {
	defer observe(ctx, s.observer, "edit-task", time.Now(), map[string]any{"date": domain.DateKey(date), "task": id}, &err)

	err = s.update(ctx, date, func(tasks []domain.Task) ([]domain.Task, error) {
		i := domain.FindTask(tasks, id)
		if i < 0 {
			return nil, fmt.Errorf("task %s on %s: %w", id, domain.DateKey(date), ErrTaskNotFound)
		}
		t := tasks[i]
		if edit.Text != nil {
			t.Text = strings.TrimSpace(*edit.Text)
		}
		if edit.Time != nil {
			t.Time = *edit.Time
			if c, err := domain.NormalizeClock(t.Time); err == nil {
				t.Time = c
			}
		}
		if edit.Duration != nil {
			t.Duration = *edit.Duration
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tasks[i] = t
		task = t
		return tasks, nil
	})
	return task, err
}

func (s *dayPlanService) DeleteTask(ctx context.Context, date time.Time, id string) (err error) {
	defer observe(ctx, s.observer, "delete-task", time.Now(), map[string]any{"date": domain.DateKey(date), "task": id}, &err)

	return s.update(ctx, date, func(tasks []domain.Task) ([]domain.Task, error) {
		i := domain.FindTask(tasks, id)
		if i < 0 {
			return nil, fmt.Errorf("task %s on %s: %w", id, domain.DateKey(date), ErrTaskNotFound)
		}
		return append(tasks[:i], tasks[i+1:]...), nil
	})
}

func (s *dayPlanService) ApplyEffect(ctx context.Context, date time.Time, eff timeline.Effect) (domain.Task, error) {
	switch eff.Kind {
	case timeline.EffectCreate:
		return s.AddTask(ctx, date, NewTaskText, eff.Time, eff.Duration)
	case timeline.EffectResize:
		return s.ResizeTask(ctx, date, eff.TaskID, eff.Duration)
	case timeline.EffectMove:
		return s.MoveTask(ctx, date, eff.TaskID, eff.Time)
	default:
		return domain.Task{}, fmt.Errorf("effect %s does not change the plan", eff.Kind)
	}
}

// update runs a read-modify-write of the day's plan under its key lock.
func (s *dayPlanService) update(ctx context.Context, date time.Time, fn func([]domain.Task) ([]domain.Task, error)) error {
	unlock := s.locks.Lock(repository.TasksKey(date))
	defer unlock()

	tasks, err := s.plans.Load(ctx, date)
	if err != nil {
		return fmt.Errorf("loading day %s: %w", domain.DateKey(date), err)
	}
	tasks, err = fn(tasks)
	if err != nil {
		return err
	}
	if err := s.plans.Save(ctx, date, tasks); err != nil {
		return fmt.Errorf("saving day %s: %w", domain.DateKey(date), err)
	}
	return nil
}

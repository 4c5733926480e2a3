package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/planner"
	"github.com/alexanderramin/lifeos/internal/progression"
	"github.com/alexanderramin/lifeos/internal/repository"
)

type goalService struct {
	goals    repository.GoalRepo
	gen      progression.Generator
	locks    *repository.KeyLocks
	observer UseCaseObserver
}

func NewGoalService(
	goals repository.GoalRepo,
	gen progression.Generator,
	locks *repository.KeyLocks,
	observers ...UseCaseObserver,
) GoalService {
	if locks == nil {
		locks = repository.NewKeyLocks()
	}
	return &goalService{
		goals:    goals,
		gen:      gen,
		locks:    locks,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *goalService) Create(ctx context.Context, g *domain.Goal) (err error) {
	fields := map[string]any{"title": g.Title, "plan_mode": string(g.PlanMode)}
	defer observe(ctx, s.observer, "create-goal", time.Now(), fields, &err)

	now := time.Now()
	if g.ID == "" {
		g.ID = domain.NewID()
	}
	g.Title = strings.TrimSpace(g.Title)
	g.Green = strings.TrimSpace(g.Green)
	g.Blue = strings.TrimSpace(g.Blue)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = domain.At(now)
	}
	if g.LastUpdate.IsZero() {
		g.LastUpdate = domain.At(now)
	}
	g.Normalize()

	unlock := s.locks.Lock(repository.KeyGoals)
	defer unlock()
	if _, err = s.goals.Get(ctx, g.ID); err == nil {
		return fmt.Errorf("goal %s already exists", g.ID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	err = s.goals.Save(ctx, g)
	return err
}

func (s *goalService) List(ctx context.Context) ([]domain.Goal, error) {
	return s.goals.List(ctx)
}

func (s *goalService) Get(ctx context.Context, id string) (*domain.Goal, error) {
	return s.goals.Get(ctx, id)
}

func (s *goalService) Update(ctx context.Context, g *domain.Goal) (err error) {
	defer observe(ctx, s.observer, "update-goal", time.Now(), map[string]any{"goal": g.ID}, &err)

	unlock := s.locks.Lock(repository.KeyGoals)
	defer unlock()
	if _, err = s.goals.Get(ctx, g.ID); err != nil {
		return err
	}
	g.Normalize()
	err = s.goals.Save(ctx, g)
	return err
}

// Delete removes the goal from the library. Its tasks stay in their day
// plans until the next synchronization drops the open ones.
func (s *goalService) Delete(ctx context.Context, id string) (err error) {
	defer observe(ctx, s.observer, "delete-goal", time.Now(), map[string]any{"goal": id}, &err)

	unlock := s.locks.Lock(repository.KeyGoals)
	defer unlock()
	err = s.goals.Delete(ctx, id)
	return err
}

func (s *goalService) Pause(ctx context.Context, id string) (*domain.Goal, error) {
	return s.setPaused(ctx, id, true)
}

// Resume reactivates a goal. A goal paused by clearing its weekdays comes
// back active every day.
func (s *goalService) Resume(ctx context.Context, id string) (*domain.Goal, error) {
	return s.setPaused(ctx, id, false)
}

func (s *goalService) setPaused(ctx context.Context, id string, paused bool) (g *domain.Goal, err error) {
	name := "resume-goal"
	if paused {
		name = "pause-goal"
	}
	defer observe(ctx, s.observer, name, time.Now(), map[string]any{"goal": id}, &err)

	unlock := s.locks.Lock(repository.KeyGoals)
	defer unlock()
	g, err = s.goals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if paused && len(g.Frequency) == 0 {
		return g, nil
	}
	g.Paused = paused
	if !paused && len(g.Frequency) == 0 {
		g.Frequency = domain.EveryDay()
	}
	if err = s.goals.Save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *goalService) Draft(ctx context.Context, description string, mode domain.PlanMode) (p *planner.Proposal, err error) {
	defer observe(ctx, s.observer, "draft-goal", time.Now(), map[string]any{"plan_mode": string(mode)}, &err)

	if s.gen == nil {
		return nil, errors.New("plan generation is not configured")
	}
	if mode != domain.PlanAdvance {
		mode = domain.PlanLoop
	}
	p, err = s.gen.Generate(ctx, planner.Request{
		GoalText: description,
		Context:  planner.RequestContext{Mode: mode},
	})
	return p, err
}

// GoalFromProposal builds an unsaved goal from a drafted proposal, active
// every day.
func GoalFromProposal(p planner.Proposal, mode domain.PlanMode) *domain.Goal {
	g := &domain.Goal{
		Title:        p.Title,
		Green:        p.Green,
		Blue:         p.Blue,
		Frequency:    domain.EveryDay(),
		PlanMode:     mode,
		Milestones:   append([]string(nil), p.Milestones...),
		DailyRoutine: append([]domain.RoutineEntry(nil), p.DailyRoutine...),
	}
	if mode == domain.PlanAdvance {
		g.StageCount = 1
	}
	return g
}

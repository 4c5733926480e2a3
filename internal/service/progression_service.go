package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/progression"
	"github.com/alexanderramin/lifeos/internal/repository"
)

type progressionService struct {
	plans    repository.DayPlanRepo
	goals    repository.GoalRepo
	advancer *progression.Advancer
	locks    *repository.KeyLocks
	observer UseCaseObserver
}

func NewProgressionService(
	plans repository.DayPlanRepo,
	goals repository.GoalRepo,
	gen progression.Generator,
	locks *repository.KeyLocks,
	observers ...UseCaseObserver,
) ProgressionService {
	if locks == nil {
		locks = repository.NewKeyLocks()
	}
	return &progressionService{
		plans:    plans,
		goals:    goals,
		advancer: progression.NewAdvancer(gen, time.Now),
		locks:    locks,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *progressionService) window(ctx context.Context, days int) (map[string][]domain.Task, time.Time, error) {
	today := domain.StartOfDay(time.Now())
	plans, err := s.plans.ListRange(ctx, today.AddDate(0, 0, -(days-1)), days)
	return plans, today, err
}

func (s *progressionService) Streak(ctx context.Context, goalID string) (int, error) {
	streaks, err := s.RefreshStreaks(ctx)
	if err != nil {
		return 0, err
	}
	for _, gs := range streaks {
		if gs.Goal.ID == goalID {
			return gs.Streak, nil
		}
	}
	return 0, fmt.Errorf("goal %s: %w", goalID, repository.ErrNotFound)
}

// RefreshStreaks recomputes every goal's streak and stores the ones that
// changed.
func (s *progressionService) RefreshStreaks(ctx context.Context) (out []GoalStreak, err error) {
	defer observe(ctx, s.observer, "refresh-streaks", time.Now(), nil, &err)

	plans, today, err := s.window(ctx, progression.StreakWindowDays)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(repository.KeyGoals)
	defer unlock()
	goals, err := s.goals.List(ctx)
	if err != nil {
		return nil, err
	}
	changed := false
	out = make([]GoalStreak, 0, len(goals))
	for i := range goals {
		n := progression.Streak(goals[i], plans, today)
		if goals[i].Streak != n {
			goals[i].Streak = n
			changed = true
		}
		out = append(out, GoalStreak{Goal: goals[i], Streak: n})
	}
	if changed {
		if err = s.goals.SaveAll(ctx, goals); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *progressionService) Recent(ctx context.Context, goalID string, n int) ([]progression.DayStatus, error) {
	if n <= 0 {
		return nil, nil
	}
	g, err := s.goals.Get(ctx, goalID)
	if err != nil {
		return nil, err
	}
	plans, today, err := s.window(ctx, n)
	if err != nil {
		return nil, err
	}
	return progression.Recent(*g, plans, today, n), nil
}

// Advance generates the goal's next stage. The generation runs without the
// library lock; the result is written back only if the goal still exists.
func (s *progressionService) Advance(ctx context.Context, goalID string, rating domain.Rating) (g *domain.Goal, err error) {
	fields := map[string]any{"goal": goalID, "rating": string(rating)}
	defer observe(ctx, s.observer, "advance-stage", time.Now(), fields, &err)

	current, err := s.goals.Get(ctx, goalID)
	if err != nil {
		return nil, err
	}
	next, err := s.advancer.Advance(ctx, *current, rating)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(repository.KeyGoals)
	defer unlock()
	latest, err := s.goals.Get(ctx, goalID)
	if err != nil {
		return nil, err
	}
	// History recorded while the request was out is kept.
	next.History = latest.History
	next.Streak = latest.Streak
	next.Paused = latest.Paused
	if err = s.goals.Save(ctx, &next); err != nil {
		return nil, err
	}
	fields["stage"] = next.StageCount
	return &next, nil
}

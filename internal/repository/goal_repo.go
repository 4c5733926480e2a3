package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// KVGoalRepo stores the whole goal library as one JSON array.
type KVGoalRepo struct {
	store  KVStore
	logger *slog.Logger
}

func NewKVGoalRepo(store KVStore, logger *slog.Logger) *KVGoalRepo {
	return &KVGoalRepo{store: store, logger: loggerOrDefault(logger)}
}

func (r *KVGoalRepo) List(ctx context.Context) ([]domain.Goal, error) {
	var goals []domain.Goal
	ok, err := decodeJSON(ctx, r.store, r.logger, KeyGoals, &goals)
	if err != nil || !ok {
		return []domain.Goal{}, err
	}
	return r.clean(goals), nil
}

// loadForWrite refuses to hand back an empty library in place of an
// undecodable one, so a write never overwrites goals it could not read.
func (r *KVGoalRepo) loadForWrite(ctx context.Context) ([]domain.Goal, error) {
	raw, ok, err := r.store.Get(ctx, KeyGoals)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", KeyGoals, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []domain.Goal{}, nil
	}
	var goals []domain.Goal
	if err := json.Unmarshal([]byte(raw), &goals); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", KeyGoals, ErrMalformed, err)
	}
	return r.clean(goals), nil
}

func (r *KVGoalRepo) clean(goals []domain.Goal) []domain.Goal {
	out := goals[:0]
	for _, g := range goals {
		if g.ID == "" {
			r.logger.Warn("dropping stored goal without id", slog.String("title", g.Title))
			continue
		}
		g.Normalize()
		out = append(out, g)
	}
	return out
}

func (r *KVGoalRepo) Get(ctx context.Context, id string) (*domain.Goal, error) {
	goals, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	g := domain.FindGoal(goals, id)
	if g == nil {
		return nil, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return g, nil
}

// Save validates g and inserts or replaces it by id.
func (r *KVGoalRepo) Save(ctx context.Context, g *domain.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	goals, err := r.loadForWrite(ctx)
	if err != nil {
		return err
	}
	if existing := domain.FindGoal(goals, g.ID); existing != nil {
		*existing = *g
	} else {
		goals = append(goals, *g)
	}
	return encodeJSON(ctx, r.store, KeyGoals, goals)
}

func (r *KVGoalRepo) Delete(ctx context.Context, id string) error {
	goals, err := r.loadForWrite(ctx)
	if err != nil {
		return err
	}
	out := make([]domain.Goal, 0, len(goals))
	for _, g := range goals {
		if g.ID != id {
			out = append(out, g)
		}
	}
	if len(out) == len(goals) {
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return encodeJSON(ctx, r.store, KeyGoals, out)
}

// SaveAll rewrites the library. It does not re-validate: callers pass goals
// previously loaded from the store with derived fields updated.
func (r *KVGoalRepo) SaveAll(ctx context.Context, goals []domain.Goal) error {
	if goals == nil {
		goals = []domain.Goal{}
	}
	return encodeJSON(ctx, r.store, KeyGoals, goals)
}

package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// KVDayPlanRepo stores each day's task collection as a JSON array under its
// per-date key.
type KVDayPlanRepo struct {
	store  KVStore
	logger *slog.Logger
}

func NewKVDayPlanRepo(store KVStore, logger *slog.Logger) *KVDayPlanRepo {
	return &KVDayPlanRepo{store: store, logger: loggerOrDefault(logger)}
}

// Load returns the day's tasks, normalized and in timeline order. Missing or
// malformed plans load as empty.
func (r *KVDayPlanRepo) Load(ctx context.Context, date time.Time) ([]domain.Task, error) {
	var tasks []domain.Task
	ok, err := decodeJSON(ctx, r.store, r.logger, TasksKey(date), &tasks)
	if err != nil || !ok {
		return []domain.Task{}, err
	}
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID == "" {
			r.logger.Warn("dropping stored task without id",
				slog.String("date", domain.DateKey(date)), slog.String("text", t.Text))
			continue
		}
		t.Normalize()
		out = append(out, t)
	}
	domain.SortTasks(out)
	return out, nil
}

// Save sorts tasks into timeline order and writes them.
func (r *KVDayPlanRepo) Save(ctx context.Context, date time.Time, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	domain.SortTasks(tasks)
	return encodeJSON(ctx, r.store, TasksKey(date), tasks)
}

// ListRange loads the plans of days consecutive dates starting at from, keyed
// by YYYY-MM-DD. Dates without a stored plan are omitted.
func (r *KVDayPlanRepo) ListRange(ctx context.Context, from time.Time, days int) (map[string][]domain.Task, error) {
	out := make(map[string][]domain.Task, days)
	start := domain.StartOfDay(from)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		if _, ok, err := r.store.Get(ctx, TasksKey(date)); err != nil {
			return nil, err
		} else if !ok {
			continue
		}
		tasks, err := r.Load(ctx, date)
		if err != nil {
			return nil, err
		}
		out[domain.DateKey(date)] = tasks
	}
	return out, nil
}

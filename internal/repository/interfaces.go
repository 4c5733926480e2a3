package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// KVStore is the flat string store every repository is layered on. There is
// no atomicity across keys.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// KeyEvent reports that key changed outside this process. An empty Key means
// the whole store should be reloaded.
type KeyEvent struct {
	Key string
}

// Watcher is implemented by stores that can report external changes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan KeyEvent, error)
}

type DayPlanRepo interface {
	Load(ctx context.Context, date time.Time) ([]domain.Task, error)
	Save(ctx context.Context, date time.Time, tasks []domain.Task) error
	ListRange(ctx context.Context, from time.Time, days int) (map[string][]domain.Task, error)
}

type GoalRepo interface {
	List(ctx context.Context) ([]domain.Goal, error)
	Get(ctx context.Context, id string) (*domain.Goal, error)
	Save(ctx context.Context, g *domain.Goal) error
	Delete(ctx context.Context, id string) error
	SaveAll(ctx context.Context, goals []domain.Goal) error
}

type EnergyRepo interface {
	GetOverride(ctx context.Context, date time.Time) (domain.Mode, bool, error)
	SetOverride(ctx context.Context, date time.Time, m domain.Mode) error
	ClearOverride(ctx context.Context, date time.Time) error
	GetProfile(ctx context.Context) (domain.Weekdays, bool, error)
	SetProfile(ctx context.Context, blueDays domain.Weekdays) error
}

type SettingsRepo interface {
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, key string) error
	LastCheckin(ctx context.Context) (string, error)
	SetLastCheckin(ctx context.Context, date time.Time) error
}

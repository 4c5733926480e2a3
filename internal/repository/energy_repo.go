package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// KVEnergyRepo stores per-date mode overrides as bare mode strings and the
// weekly profile as a JSON array of blue weekday indices.
type KVEnergyRepo struct {
	store  KVStore
	logger *slog.Logger
}

func NewKVEnergyRepo(store KVStore, logger *slog.Logger) *KVEnergyRepo {
	return &KVEnergyRepo{store: store, logger: loggerOrDefault(logger)}
}

func (r *KVEnergyRepo) GetOverride(ctx context.Context, date time.Time) (domain.Mode, bool, error) {
	key := StatusKey(date)
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	m, valid := domain.ParseMode(strings.Trim(strings.TrimSpace(raw), `"`))
	if !valid {
		r.logger.Warn("ignoring malformed mode override", slog.String("key", key), slog.String("value", raw))
		return "", false, nil
	}
	return m, true, nil
}

func (r *KVEnergyRepo) SetOverride(ctx context.Context, date time.Time, m domain.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("unknown mode %q", m)
	}
	key := StatusKey(date)
	if err := r.store.Set(ctx, key, string(m)); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (r *KVEnergyRepo) ClearOverride(ctx context.Context, date time.Time) error {
	key := StatusKey(date)
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// GetProfile returns the blue weekdays. A profile that is not an array of
// integers reports false, as if none were stored.
func (r *KVEnergyRepo) GetProfile(ctx context.Context) (domain.Weekdays, bool, error) {
	var days []int
	ok, err := decodeJSON(ctx, r.store, r.logger, KeyEnergyProfile, &days)
	if err != nil || !ok || days == nil {
		return nil, false, err
	}
	return domain.NewWeekdays(days...), true, nil
}

func (r *KVEnergyRepo) SetProfile(ctx context.Context, blueDays domain.Weekdays) error {
	for _, d := range blueDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("weekday %d out of range 0..6", d)
		}
	}
	return encodeJSON(ctx, r.store, KeyEnergyProfile, domain.NewWeekdays(blueDays...))
}

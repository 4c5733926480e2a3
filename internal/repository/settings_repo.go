package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// KVSettingsRepo holds the opaque credential and check-in bookkeeping, both
// stored as bare strings.
type KVSettingsRepo struct {
	store KVStore
}

func NewKVSettingsRepo(store KVStore) *KVSettingsRepo {
	return &KVSettingsRepo{store: store}
}

func (r *KVSettingsRepo) APIKey(ctx context.Context) (string, error) {
	return r.getString(ctx, KeyAPIKey)
}

func (r *KVSettingsRepo) SetAPIKey(ctx context.Context, key string) error {
	return r.setString(ctx, KeyAPIKey, strings.TrimSpace(key))
}

// LastCheckin returns the YYYY-MM-DD date of the last energy check-in, or "".
func (r *KVSettingsRepo) LastCheckin(ctx context.Context) (string, error) {
	return r.getString(ctx, KeyLastCheckin)
}

func (r *KVSettingsRepo) SetLastCheckin(ctx context.Context, date time.Time) error {
	return r.setString(ctx, KeyLastCheckin, domain.DateKey(date))
}

func (r *KVSettingsRepo) getString(ctx context.Context, key string) (string, error) {
	v, _, err := r.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return strings.TrimSpace(v), nil
}

func (r *KVSettingsRepo) setString(ctx context.Context, key, value string) error {
	if err := r.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

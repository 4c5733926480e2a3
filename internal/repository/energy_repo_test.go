package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnergyRepo_Override(t *testing.T) {
	ctx := context.Background()
	repo := NewKVEnergyRepo(NewSQLiteKVStore(testutil.NewTestDB(t)), nil)

	_, ok, err := repo.GetOverride(ctx, tuesday)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetOverride(ctx, tuesday, domain.ModeBlue))
	m, ok, err := repo.GetOverride(ctx, tuesday)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.ModeBlue, m)

	require.NoError(t, repo.ClearOverride(ctx, tuesday))
	_, ok, err = repo.GetOverride(ctx, tuesday)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, repo.SetOverride(ctx, tuesday, "purple"))
}

func TestEnergyRepo_OverrideAcceptsQuotedAndIgnoresGarbage(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteKVStore(testutil.NewTestDB(t))
	repo := NewKVEnergyRepo(store, nil)

	require.NoError(t, store.Set(ctx, StatusKey(tuesday), `"green"`))
	m, ok, err := repo.GetOverride(ctx, tuesday)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.ModeGreen, m)

	require.NoError(t, store.Set(ctx, StatusKey(tuesday), `sunny`))
	_, ok, err = repo.GetOverride(ctx, tuesday)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnergyRepo_Profile(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteKVStore(testutil.NewTestDB(t))
	repo := NewKVEnergyRepo(store, nil)

	require.NoError(t, repo.SetProfile(ctx, domain.Weekdays{6, 0}))
	days, ok, err := repo.GetProfile(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Weekdays{0, 6}, days)

	assert.Error(t, repo.SetProfile(ctx, domain.Weekdays{7}))

	for _, bad := range []string{`{"sat":true}`, `"weekends"`, `[1,"x"]`, `null`} {
		require.NoError(t, store.Set(ctx, KeyEnergyProfile, bad))
		_, ok, err := repo.GetProfile(ctx)
		require.NoError(t, err, bad)
		assert.False(t, ok, bad)
	}
}

func TestSettingsRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewKVSettingsRepo(NewSQLiteKVStore(testutil.NewTestDB(t)))

	key, err := repo.APIKey(ctx)
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, repo.SetAPIKey(ctx, "  sk-123 \n"))
	key, err = repo.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-123", key)

	require.NoError(t, repo.SetLastCheckin(ctx, tuesday))
	last, err := repo.LastCheckin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-17", last)
}

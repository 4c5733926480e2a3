package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tuesday = time.Date(2025, 6, 17, 0, 0, 0, 0, time.Local)

func TestDayPlanRepo_MissingDayLoadsEmpty(t *testing.T) {
	repo := NewKVDayPlanRepo(NewSQLiteKVStore(testutil.NewTestDB(t)), nil)
	tasks, err := repo.Load(context.Background(), tuesday)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestDayPlanRepo_MalformedDayLoadsEmptyAndWarns(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteKVStore(testutil.NewTestDB(t))
	logger, logs := testutil.NewCaptureLogger()
	require.NoError(t, store.Set(ctx, TasksKey(tuesday), `{not json`))

	tasks, err := NewKVDayPlanRepo(store, logger).Load(ctx, tuesday)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Contains(t, logs.String(), "malformed")
	assert.Contains(t, logs.String(), TasksKey(tuesday))
}

func TestDayPlanRepo_SaveSortsAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	repo := NewKVDayPlanRepo(NewSQLiteKVStore(testutil.NewTestDB(t)), nil)

	late := testutil.NewTestTask("Read", "21:00")
	early := testutil.NewTestTask("Run", "07:00", testutil.WithHabit("g1"), testutil.WithMode(domain.ModeBlue), testutil.WithDuration(15))
	require.NoError(t, repo.Save(ctx, tuesday, []domain.Task{late, early}))

	got, err := repo.Load(ctx, tuesday)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, "g1", got[0].GoalID)
	assert.Equal(t, domain.SourceHabit, got[0].Source)
	assert.Equal(t, late.ID, got[1].ID)
}

func TestDayPlanRepo_LoadsLegacyNumericIDs(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteKVStore(testutil.NewTestDB(t))
	require.NoError(t, store.Set(ctx, TasksKey(tuesday),
		`[{"id":1718611200000,"text":"Walk","time":"09:00","duration":15,"type":"blue","source":"habit","goalId":17,"done":false}]`))

	tasks, err := NewKVDayPlanRepo(store, nil).Load(ctx, tuesday)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "1718611200000", tasks[0].ID)
	assert.Equal(t, "17", tasks[0].GoalID)
}

func TestDayPlanRepo_ListRangeSkipsMissingDays(t *testing.T) {
	ctx := context.Background()
	repo := NewKVDayPlanRepo(NewSQLiteKVStore(testutil.NewTestDB(t)), nil)
	require.NoError(t, repo.Save(ctx, tuesday, []domain.Task{testutil.NewTestTask("A", "09:00")}))
	require.NoError(t, repo.Save(ctx, tuesday.AddDate(0, 0, 2), []domain.Task{}))

	plans, err := repo.ListRange(ctx, tuesday, 7)
	require.NoError(t, err)
	assert.Len(t, plans, 2)
	assert.Len(t, plans["2025-06-17"], 1)
	assert.Contains(t, plans, "2025-06-19")
}

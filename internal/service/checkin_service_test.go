package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/lifeos/internal/checkin"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckinService_CompleteHabitRecordsHistoryAndStreak(t *testing.T) {
	h := setupServices(t)
	ctx := context.Background()
	today := domain.StartOfDay(time.Now())
	g := h.addGoal(t, testutil.NewTestGoal("Run"))

	view, err := h.days.OpenDay(ctx, today)
	require.NoError(t, err)
	task := habitTask(view.Tasks, g.ID)
	require.NotNil(t, task)

	done, err := h.checkins.Complete(ctx, today, task.ID, "  felt good ", 4)
	require.NoError(t, err)
	assert.True(t, done.Done)
	assert.Equal(t, "felt good", done.Review)
	assert.False(t, done.CompletedAt.IsZero())

	stored := h.goal(t, g.ID)
	require.Len(t, stored.History, 1)
	rec := stored.History[0]
	assert.Equal(t, domain.DateKey(today), rec.Date)
	assert.Equal(t, task.ID, rec.TaskID)
	assert.Equal(t, "felt good", rec.Review)
	assert.Equal(t, 4, rec.Rating)
	assert.Equal(t, domain.ModeGreen, rec.Mode)
	assert.Equal(t, 1, stored.Streak)

	undone, err := h.checkins.Undo(ctx, today, task.ID)
	require.NoError(t, err)
	assert.False(t, undone.Done)
	assert.Empty(t, undone.Review)
	assert.True(t, undone.CompletedAt.IsZero())

	stored = h.goal(t, g.ID)
	assert.Empty(t, stored.History)
	assert.Zero(t, stored.Streak)
}

func TestCheckinService_ManualTaskLeavesGoalsAlone(t *testing.T) {
	h := setupServices(t)
	ctx := context.Background()
	g := h.addGoal(t, testutil.NewTestGoal("Run"))
	task, err := h.days.AddTask(ctx, tuesday, "Run (green)", "12:00", 30)
	require.NoError(t, err)

	_, err = h.checkins.Complete(ctx, tuesday, task.ID, "", 0)
	require.NoError(t, err)
	assert.Empty(t, h.goal(t, g.ID).History)
}

func TestCheckinService_LegacyTaskMatchedByText(t *testing.T) {
	h := setupServices(t)
	ctx := context.Background()
	g := h.addGoal(t, testutil.NewTestGoal("Run"))
	legacy := testutil.NewTestTask(g.Green, "07:00", testutil.WithHabit(""))
	require.NoError(t, h.plans.Save(ctx, tuesday, []domain.Task{legacy}))

	_, err := h.checkins.Complete(ctx, tuesday, legacy.ID, "", 0)
	require.NoError(t, err)

	stored := h.goal(t, g.ID)
	require.Len(t, stored.History, 1)
	assert.Equal(t, legacy.ID, stored.History[0].TaskID)
	assert.Contains(t, h.logs.String(), "habit task matched to goal by text")
}

func TestCheckinService_AmbiguousMatchWarnsAndSkipsHistory(t *testing.T) {
	h := setupServices(t)
	ctx := context.Background()
	a := h.addGoal(t, testutil.NewTestGoal("A", testutil.WithTexts("Meditate", "Breathe")))
	b := h.addGoal(t, testutil.NewTestGoal("B", testutil.WithTexts("Meditate", "Sit")))
	legacy := testutil.NewTestTask("Meditate", "07:00", testutil.WithHabit(""))
	require.NoError(t, h.plans.Save(ctx, tuesday, []domain.Task{legacy}))

	done, err := h.checkins.Complete(ctx, tuesday, legacy.ID, "", 0)
	require.NoError(t, err)
	assert.True(t, done.Done)

	assert.Empty(t, h.goal(t, a.ID).History)
	assert.Empty(t, h.goal(t, b.ID).History)
	logs := h.logs.String()
	assert.Contains(t, logs, "level=WARN")
	assert.Contains(t, logs, "match=ambiguous")
}

func TestCheckinService_InvalidRatingKeepsTaskOpen(t *testing.T) {
	h := setupServices(t)
	ctx := context.Background()
	task, err := h.days.AddTask(ctx, tuesday, "Write", "09:00", 60)
	require.NoError(t, err)

	_, err = h.checkins.Complete(ctx, tuesday, task.ID, "", checkin.MaxRating+1)
	assert.ErrorIs(t, err, checkin.ErrInvalidRating)

	stored, err := h.days.Tasks(ctx, tuesday)
	require.NoError(t, err)
	assert.False(t, stored[0].Done)
}

func TestCheckinService_ConfirmKeepsEditsMadeDuringReview(t *testing.T) {
	h := setupServices(t)
	ctx := context.Background()
	task, err := h.days.AddTask(ctx, tuesday, "Write", "09:00", 60)
	require.NoError(t, err)

	r, err := h.checkins.Begin(ctx, tuesday, task.ID)
	require.NoError(t, err)
	assert.Equal(t, checkin.StateReviewing, r.State())

	_, err = h.days.MoveTask(ctx, tuesday, task.ID, "14:00")
	require.NoError(t, err)

	done, err := h.checkins.Confirm(ctx, r, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "14:00", done.Time)
	assert.True(t, done.Done)
}

func TestCheckinService_SecondConfirmFails(t *testing.T) {
	h := setupServices(t)
	ctx := context.Background()
	task, err := h.days.AddTask(ctx, tuesday, "Write", "09:00", 60)
	require.NoError(t, err)

	first, err := h.checkins.Begin(ctx, tuesday, task.ID)
	require.NoError(t, err)
	second, err := h.checkins.Begin(ctx, tuesday, task.ID)
	require.NoError(t, err)

	_, err = h.checkins.Confirm(ctx, first, "one", 0)
	require.NoError(t, err)
	_, err = h.checkins.Confirm(ctx, second, "two", 0)
	assert.ErrorIs(t, err, checkin.ErrAlreadyDone)

	_, err = h.checkins.Begin(ctx, tuesday, task.ID)
	assert.ErrorIs(t, err, checkin.ErrAlreadyDone)

	stored, err := h.days.Tasks(ctx, tuesday)
	require.NoError(t, err)
	assert.Equal(t, "one", stored[0].Review)
}

func TestCheckinService_UndoRequiresDoneTask(t *testing.T) {
	h := setupServices(t)
	ctx := context.Background()
	task, err := h.days.AddTask(ctx, tuesday, "Write", "09:00", 60)
	require.NoError(t, err)

	_, err = h.checkins.Undo(ctx, tuesday, task.ID)
	assert.ErrorIs(t, err, checkin.ErrNotDone)
	_, err = h.checkins.Undo(ctx, tuesday, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = h.checkins.Begin(ctx, tuesday, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

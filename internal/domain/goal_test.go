package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdays_UnmarshalLegacyShapes(t *testing.T) {
	cases := []struct {
		raw  string
		want Weekdays
	}{
		{`[5,1,3,1,9,-1]`, Weekdays{1, 3, 5}},
		{`[]`, Weekdays{}},
		{`"workdays"`, Weekdays{1, 2, 3, 4, 5}},
		{`"weekends"`, Weekdays{0, 6}},
		{`"daily"`, EveryDay()},
		{`7`, EveryDay()},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			var w Weekdays
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &w))
			assert.Equal(t, tc.want, w)
		})
	}
}

func TestGoal_UnmarshalDefaultsMissingFrequency(t *testing.T) {
	var g Goal
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"title":"Run","green":"Run 5km","blue":"Walk 2km"}`), &g))
	assert.Equal(t, "42", g.ID)
	assert.Equal(t, EveryDay(), g.Frequency)
}

func TestGoal_EmptyFrequencyIsPausedNotDefaulted(t *testing.T) {
	var g Goal
	require.NoError(t, json.Unmarshal([]byte(`{"id":"g","title":"Run","frequency":[],"green":"a","blue":"b"}`), &g))
	assert.Empty(t, g.Frequency)
	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.False(t, g.IsActiveOn(d))
	}
}

func TestRoutineEntry_BareStringFillsBothVariants(t *testing.T) {
	var routine []RoutineEntry
	raw := `["Stretch", {"day":2,"green":"Squats","blue":"Walk","green_duration":45}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &routine))
	require.Len(t, routine, 2)

	assert.Equal(t, "Stretch", routine[0].Text(ModeGreen))
	assert.Equal(t, "Stretch", routine[0].Text(ModeBlue))
	assert.Equal(t, "Squats", routine[1].Text(ModeGreen))
	assert.Equal(t, "Walk", routine[1].Text(ModeBlue))
	assert.Equal(t, 45, routine[1].DurationFor(ModeGreen))
	assert.Equal(t, 0, routine[1].DurationFor(ModeBlue))
}

func TestGoal_Validate(t *testing.T) {
	g := Goal{ID: "g", Title: "Run", Frequency: Weekdays{1}, Green: "Run", Blue: "Walk", Time: "07:30"}
	require.NoError(t, g.Validate())

	g.Frequency = Weekdays{}
	err := g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGoal)
	assert.Contains(t, err.Error(), "at least one weekday")

	g.Frequency = Weekdays{1}
	g.Time = "7h"
	assert.ErrorIs(t, g.Validate(), ErrInvalidGoal)

	g.Time = ""
	g.Blue = ""
	assert.ErrorIs(t, g.Validate(), ErrInvalidGoal)
}

func TestGoal_IsActiveOn(t *testing.T) {
	g := Goal{Frequency: Weekdays{1, 2, 3, 4, 5}}
	assert.True(t, g.IsActiveOn(time.Tuesday))
	assert.False(t, g.IsActiveOn(time.Sunday))

	g.Paused = true
	assert.False(t, g.IsActiveOn(time.Tuesday))
}

func TestGoal_StageStartFallsBackToCreatedAt(t *testing.T) {
	g := Goal{CreatedAt: At(testNow)}
	assert.Equal(t, testNow, g.StageStart())

	later := testNow.Add(48 * time.Hour)
	g.LastUpdate = At(later)
	assert.Equal(t, later, g.StageStart())
}

func TestFlexTime_AcceptsUnixMillis(t *testing.T) {
	var ft FlexTime
	require.NoError(t, json.Unmarshal([]byte(`1718611200000`), &ft))
	assert.Equal(t, int64(1718611200000), ft.UnixMilli())

	require.NoError(t, json.Unmarshal([]byte(`null`), &ft))
	assert.True(t, ft.IsZero())
}

func TestGoal_Normalize(t *testing.T) {
	g := Goal{PlanMode: "", DailyRoutine: make([]RoutineEntry, 9)}
	g.Normalize()
	assert.Equal(t, PlanLoop, g.PlanMode)
	assert.Len(t, g.DailyRoutine, RoutineDays)

	adv := Goal{PlanMode: PlanAdvance}
	adv.Normalize()
	assert.Equal(t, 1, adv.StageCount)
}

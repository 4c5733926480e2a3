package dayplan

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tuesday = time.Date(2025, 6, 17, 0, 0, 0, 0, time.Local)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%03d", n)
	}
}

func newSync() *Synchronizer { return &Synchronizer{NewID: seqIDs()} }

func TestSync_EmptyDayBlueTuesdayScenario(t *testing.T) {
	g := testutil.NewTestGoal("Fitness",
		testutil.WithFrequency(1, 2, 3, 4, 5),
		testutil.WithGoalTime("09:00"),
		testutil.WithTexts("Run 5km", "Walk 2km"),
	)

	res := newSync().Sync(tuesday, domain.ModeBlue, nil, []domain.Goal{*g})

	require.Len(t, res.Tasks, 1)
	task := res.Tasks[0]
	assert.Equal(t, "09:00", task.Time)
	assert.Equal(t, "Walk 2km", task.Text)
	assert.Equal(t, 15, task.Duration)
	assert.Equal(t, domain.ModeBlue, task.Type)
	assert.Equal(t, domain.SourceHabit, task.Source)
	assert.Equal(t, g.ID, task.GoalID)
	assert.False(t, task.Done)
	assert.Equal(t, 1, res.Added)
}

func TestSync_ManualTaskOnlyChangesType(t *testing.T) {
	manual := testutil.NewTestTask("Deep work", "14:00", testutil.WithDuration(90))

	res := newSync().Sync(tuesday, domain.ModeBlue, []domain.Task{manual}, nil)

	require.Len(t, res.Tasks, 1)
	got := res.Tasks[0]
	assert.Equal(t, manual.ID, got.ID)
	assert.Equal(t, "14:00", got.Time)
	assert.Equal(t, 90, got.Duration)
	assert.Equal(t, "Deep work", got.Text)
	assert.Equal(t, domain.ModeBlue, got.Type)
}

func TestSync_DoneManualTaskKeepsItsMode(t *testing.T) {
	manual := testutil.NewTestTask("Deep work", "14:00", testutil.WithDone("shipped"))

	res := newSync().Sync(tuesday, domain.ModeBlue, []domain.Task{manual}, nil)

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, manual, res.Tasks[0])
	assert.Equal(t, domain.ModeGreen, res.Tasks[0].Type)
}

func TestSync_DeletedGoalDropsItsTask(t *testing.T) {
	g := testutil.NewTestGoal("Read")
	s := newSync()
	first := s.Sync(tuesday, domain.ModeGreen, nil, []domain.Goal{*g})
	require.Len(t, first.Tasks, 1)

	res := s.Sync(tuesday, domain.ModeGreen, first.Tasks, nil)
	assert.Empty(t, res.Tasks)
	assert.Equal(t, 1, res.Dropped)
}

func TestSync_InactiveOrPausedGoalDropsOpenTask(t *testing.T) {
	weekendOnly := testutil.NewTestGoal("Hike", testutil.WithFrequency(0, 6))
	paused := testutil.NewTestGoal("Piano", testutil.WithPaused())
	tasks := []domain.Task{
		testutil.NewTestTask("Hike", "10:00", testutil.WithHabit(weekendOnly.ID)),
		testutil.NewTestTask("Piano", "11:00", testutil.WithHabit(paused.ID)),
	}

	res := newSync().Sync(tuesday, domain.ModeGreen, tasks, []domain.Goal{*weekendOnly, *paused})
	assert.Empty(t, res.Tasks)
}

func TestSync_DoneTasksUntouchedAndNotRegenerated(t *testing.T) {
	g := testutil.NewTestGoal("Run", testutil.WithTexts("Run 5km", "Walk 2km"))
	done := testutil.NewTestTask("Run 5km", "07:00", testutil.WithHabit(g.ID), testutil.WithDone("felt great"))

	res := newSync().Sync(tuesday, domain.ModeBlue, []domain.Task{done}, []domain.Goal{*g})

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, done, res.Tasks[0])
	assert.Zero(t, res.Added)
}

func TestSync_DedupKeepsFirstOpenHabitTask(t *testing.T) {
	g := testutil.NewTestGoal("Run")
	a := testutil.NewTestTask("x", "08:00", testutil.WithHabit(g.ID), testutil.WithTaskID("a"))
	b := testutil.NewTestTask("x", "10:00", testutil.WithHabit(g.ID), testutil.WithTaskID("b"))

	res := newSync().Sync(tuesday, domain.ModeGreen, []domain.Task{a, b}, []domain.Goal{*g})
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "a", res.Tasks[0].ID)
	assert.Equal(t, 1, res.Dropped)
}

func TestSync_OpenDuplicateOfDoneHabitIsDropped(t *testing.T) {
	g := testutil.NewTestGoal("Run")
	open := testutil.NewTestTask("x", "06:00", testutil.WithHabit(g.ID))
	done := testutil.NewTestTask("x", "08:00", testutil.WithHabit(g.ID), testutil.WithDone(""))

	res := newSync().Sync(tuesday, domain.ModeGreen, []domain.Task{open, done}, []domain.Goal{*g})
	require.Len(t, res.Tasks, 1)
	assert.True(t, res.Tasks[0].Done)
}

func TestSync_LegacyHabitWithoutGoalIDIsUserOwned(t *testing.T) {
	legacy := testutil.NewTestTask("Stretch", "07:30", testutil.WithHabit(""), testutil.WithDuration(45))

	res := newSync().Sync(tuesday, domain.ModeBlue, []domain.Task{legacy}, nil)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "Stretch", res.Tasks[0].Text)
	assert.Equal(t, 45, res.Tasks[0].Duration)
	assert.Equal(t, domain.ModeBlue, res.Tasks[0].Type)
}

func TestSync_DefaultTimesSpreadFromNine(t *testing.T) {
	goals := []domain.Goal{
		*testutil.NewTestGoal("A", testutil.WithGoalID("a")),
		*testutil.NewTestGoal("B", testutil.WithGoalID("b"), testutil.WithGoalTime("06:15")),
		*testutil.NewTestGoal("C", testutil.WithGoalID("c")),
	}

	res := newSync().Sync(tuesday, domain.ModeGreen, nil, goals)
	times := map[string]string{}
	for _, task := range res.Tasks {
		times[task.GoalID] = task.Time
	}
	assert.Equal(t, map[string]string{"a": "09:00", "b": "06:15", "c": "11:00"}, times)
}

func TestDefaultStart_ClampsAtElevenPM(t *testing.T) {
	assert.Equal(t, "09:00", defaultStart(0))
	assert.Equal(t, "23:00", defaultStart(14))
	assert.Equal(t, "23:00", defaultStart(40))
}

func TestSync_RoutineOverridesTextAndDuration(t *testing.T) {
	start := tuesday.AddDate(0, 0, -2)
	g := testutil.NewTestGoal("Abs",
		testutil.WithTexts("Crunches", "Plank"),
		testutil.WithAdvance(1, start),
		testutil.WithRoutine(
			domain.RoutineEntry{Green: "d1", Blue: "d1b"},
			domain.RoutineEntry{Green: "d2", Blue: "d2b"},
			domain.RoutineEntry{Green: "Squats x30", Blue: "", GreenDuration: 40, BlueDuration: 5},
		),
	)

	green := newSync().Sync(tuesday, domain.ModeGreen, nil, []domain.Goal{*g})
	require.Len(t, green.Tasks, 1)
	assert.Equal(t, "Squats x30", green.Tasks[0].Text)
	assert.Equal(t, 45, green.Tasks[0].Duration, "off-grid routine durations snap to the grid")

	blue := newSync().Sync(tuesday, domain.ModeBlue, nil, []domain.Goal{*g})
	assert.Equal(t, "Plank", blue.Tasks[0].Text, "blank routine text falls back to goal default")
	assert.Equal(t, domain.MinTaskDurationMin, blue.Tasks[0].Duration, "routine durations respect the minimum")
}

func TestSync_GoalTimeIsStoredCanonical(t *testing.T) {
	g := testutil.NewTestGoal("Run", testutil.WithGoalTime("7:30"))

	res := newSync().Sync(tuesday, domain.ModeGreen, nil, []domain.Goal{*g})
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "07:30", res.Tasks[0].Time)
}

func TestCycleDay(t *testing.T) {
	start := time.Date(2025, 6, 1, 18, 30, 0, 0, time.Local)
	loop := domain.Goal{PlanMode: domain.PlanLoop, LastUpdate: domain.At(start)}
	adv := domain.Goal{PlanMode: domain.PlanAdvance, LastUpdate: domain.At(start)}

	cases := []struct {
		date      time.Time
		loop, adv int
	}{
		{time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local), 0, 0},
		{time.Date(2025, 6, 3, 8, 0, 0, 0, time.Local), 2, 2},
		{time.Date(2025, 6, 8, 8, 0, 0, 0, time.Local), 0, 6},
		{time.Date(2025, 6, 12, 8, 0, 0, 0, time.Local), 4, 6},
		{time.Date(2025, 5, 20, 8, 0, 0, 0, time.Local), 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.loop, CycleDay(loop, tc.date), "loop %s", tc.date.Format(domain.DateLayout))
		assert.Equal(t, tc.adv, CycleDay(adv, tc.date), "advance %s", tc.date.Format(domain.DateLayout))
	}

	noStart := domain.Goal{PlanMode: domain.PlanLoop}
	assert.Equal(t, 0, CycleDay(noStart, tuesday))
}

func TestSync_DoesNotMutateInput(t *testing.T) {
	manual := testutil.NewTestTask("Write", "10:00")
	in := []domain.Task{manual}
	newSync().Sync(tuesday, domain.ModeBlue, in, nil)
	assert.Equal(t, domain.ModeGreen, in[0].Type)
}

// randomDay builds a plan of manual, habit, legacy and done tasks over goals.
func randomDay(rng *rand.Rand, goals []domain.Goal) []domain.Task {
	n := rng.Intn(8)
	tasks := make([]domain.Task, 0, n)
	for i := 0; i < n; i++ {
		task := domain.Task{
			ID:       fmt.Sprintf("t-%02d", i),
			Text:     fmt.Sprintf("task %d", i),
			Time:     domain.FormatClock(rng.Intn(96) * 15),
			Duration: 15 * (1 + rng.Intn(8)),
			Type:     []domain.Mode{domain.ModeGreen, domain.ModeBlue}[rng.Intn(2)],
			Source:   domain.SourceManual,
		}
		switch rng.Intn(4) {
		case 0, 1:
			if len(goals) > 0 {
				task.Source = domain.SourceHabit
				task.GoalID = goals[rng.Intn(len(goals))].ID
			}
		case 2:
			task.Source = domain.SourceHabit
			task.GoalID = "deleted-goal"
		}
		task.Done = rng.Intn(4) == 0
		tasks = append(tasks, task)
	}
	return tasks
}

func randomGoals(rng *rand.Rand) []domain.Goal {
	n := rng.Intn(5)
	goals := make([]domain.Goal, 0, n)
	for i := 0; i < n; i++ {
		var days []int
		for d := 0; d < 7; d++ {
			if rng.Intn(3) > 0 {
				days = append(days, d)
			}
		}
		g := *testutil.NewTestGoal(fmt.Sprintf("goal %d", i),
			testutil.WithGoalID(fmt.Sprintf("g-%d", i)),
			testutil.WithFrequency(days...),
			testutil.WithCreatedAt(tuesday.AddDate(0, 0, -rng.Intn(20))),
		)
		if rng.Intn(2) == 0 {
			g.Time = domain.FormatClock(rng.Intn(24) * 60)
		}
		goals = append(goals, g)
	}
	return goals
}

func TestSync_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 300; trial++ {
		goals := randomGoals(rng)
		tasks := randomDay(rng, goals)
		mode := []domain.Mode{domain.ModeGreen, domain.ModeBlue}[rng.Intn(2)]
		s := newSync()

		first := s.Sync(tuesday, mode, tasks, goals)

		inputByID := map[string]domain.Task{}
		for _, task := range tasks {
			inputByID[task.ID] = task
		}
		openPerGoal := map[string]int{}
		for i, task := range first.Tasks {
			if i > 0 {
				prev := first.Tasks[i-1]
				assert.True(t, prev.StartMinute() < task.StartMinute() ||
					(prev.StartMinute() == task.StartMinute() && prev.ID <= task.ID),
					"trial %d: plan not in (time, id) order", trial)
			}
			orig, existed := inputByID[task.ID]
			if existed && orig.Done {
				assert.Equal(t, orig, task, "trial %d: done task rewritten", trial)
			}
			if existed && orig.Source == domain.SourceManual && !orig.Done {
				assert.Equal(t, orig.Text, task.Text, "trial %d", trial)
				assert.Equal(t, orig.Duration, task.Duration, "trial %d", trial)
				assert.Equal(t, orig.Time, task.Time, "trial %d", trial)
				assert.Equal(t, mode, task.Type, "trial %d", trial)
			}
			if task.IsHabit() && !task.Done && task.GoalID != "" {
				openPerGoal[task.GoalID]++
			}
		}
		for id, n := range openPerGoal {
			assert.LessOrEqual(t, n, 1, "trial %d: goal %s has %d open habit tasks", trial, id, n)
		}

		second := s.Sync(tuesday, mode, first.Tasks, goals)
		a, err := json.Marshal(first.Tasks)
		require.NoError(t, err)
		b, err := json.Marshal(second.Tasks)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), "trial %d: sync not idempotent", trial)
		assert.False(t, second.Changed(), "trial %d", trial)
	}
}

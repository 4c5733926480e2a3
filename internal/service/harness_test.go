package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/planner"
	"github.com/alexanderramin/lifeos/internal/repository"
	"github.com/alexanderramin/lifeos/internal/testutil"
	"github.com/stretchr/testify/require"
)

// tuesday is a fixed date whose weekday is 2.
var tuesday = time.Date(2025, 6, 17, 0, 0, 0, 0, time.Local)

type harness struct {
	store    repository.KVStore
	plans    *repository.KVDayPlanRepo
	goals    *repository.KVGoalRepo
	modes    *repository.KVEnergyRepo
	settings *repository.KVSettingsRepo
	locks    *repository.KeyLocks
	gen      *fakeGenerator
	logs     *testutil.LogBuffer

	days        DayPlanService
	energy      EnergyService
	goalSvc     GoalService
	checkins    CheckinService
	progression ProgressionService
	export      ExportService
}

func setupServices(t *testing.T) *harness {
	t.Helper()
	return setupServicesOn(t, repository.NewSQLiteKVStore(testutil.NewTestDB(t)))
}

// setupServicesOn wires the services over store.
func setupServicesOn(t *testing.T, store repository.KVStore) *harness {
	t.Helper()
	logger, logs := testutil.NewCaptureLogger()

	h := &harness{
		store:    store,
		plans:    repository.NewKVDayPlanRepo(store, logger),
		goals:    repository.NewKVGoalRepo(store, logger),
		modes:    repository.NewKVEnergyRepo(store, logger),
		settings: repository.NewKVSettingsRepo(store),
		locks:    repository.NewKeyLocks(),
		gen:      &fakeGenerator{},
		logs:     logs,
	}
	obs := NewSlogUseCaseObserver(logger)
	h.days = NewDayPlanService(h.plans, h.goals, h.modes, h.locks, obs)
	h.energy = NewEnergyService(h.modes, h.settings, h.days, obs)
	h.goalSvc = NewGoalService(h.goals, h.gen, h.locks, obs)
	h.checkins = NewCheckinService(h.plans, h.goals, h.locks, logger, obs)
	h.progression = NewProgressionService(h.plans, h.goals, h.gen, h.locks, obs)
	h.export = NewExportService(h.days, obs)
	return h
}

func (h *harness) addGoal(t *testing.T, g *domain.Goal) *domain.Goal {
	t.Helper()
	require.NoError(t, h.goals.Save(context.Background(), g))
	return g
}

func (h *harness) goal(t *testing.T, id string) *domain.Goal {
	t.Helper()
	g, err := h.goals.Get(context.Background(), id)
	require.NoError(t, err)
	return g
}

func habitTask(tasks []domain.Task, goalID string) *domain.Task {
	for i := range tasks {
		if tasks[i].GoalID == goalID {
			return &tasks[i]
		}
	}
	return nil
}

// fakeGenerator returns a fixed proposal and records requests.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []planner.Request
	proposal *planner.Proposal
	err      error
	// onGenerate runs before the result is returned.
	onGenerate func()
}

func (f *fakeGenerator) Generate(_ context.Context, req planner.Request) (*planner.Proposal, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	p, err, hook := f.proposal, f.err, f.onGenerate
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func weekProposal(prefix string) *planner.Proposal {
	routine := make([]domain.RoutineEntry, domain.RoutineDays)
	for i := range routine {
		routine[i] = domain.RoutineEntry{
			Day:   i + 1,
			Green: prefix + " green",
			Blue:  prefix + " blue",
		}
	}
	return &planner.Proposal{
		Title:        prefix,
		Green:        prefix + " green",
		Blue:         prefix + " blue",
		Milestones:   []string{prefix + " milestone"},
		DailyRoutine: routine,
	}
}

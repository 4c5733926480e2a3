package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/energy"
	"github.com/alexanderramin/lifeos/internal/repository"
)

type energyService struct {
	modes    repository.EnergyRepo
	settings repository.SettingsRepo
	resolver *energy.Resolver
	days     DayPlanService
	observer UseCaseObserver
}

func NewEnergyService(
	modes repository.EnergyRepo,
	settings repository.SettingsRepo,
	days DayPlanService,
	observers ...UseCaseObserver,
) EnergyService {
	return &energyService{
		modes:    modes,
		settings: settings,
		resolver: energy.NewResolver(modes),
		days:     days,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *energyService) ResolveMode(ctx context.Context, date time.Time) (energy.Resolution, error) {
	return s.resolver.Resolve(ctx, date)
}

func (s *energyService) Profile(ctx context.Context) (domain.Weekdays, bool, error) {
	return s.modes.GetProfile(ctx)
}

func (s *energyService) SetProfile(ctx context.Context, blueDays []int) (err error) {
	defer observe(ctx, s.observer, "set-profile", time.Now(), map[string]any{"blue_days": len(blueDays)}, &err)

	for _, d := range blueDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("weekday %d out of range 0..6", d)
		}
	}
	return s.modes.SetProfile(ctx, domain.NewWeekdays(blueDays...))
}

func (s *energyService) SetOverride(ctx context.Context, date time.Time, m domain.Mode) (view *DayView, err error) {
	defer observe(ctx, s.observer, "set-mode", time.Now(), map[string]any{"date": domain.DateKey(date), "mode": string(m)}, &err)

	if !m.Valid() {
		return nil, fmt.Errorf("unknown mode %q (want green or blue)", m)
	}
	if err = s.modes.SetOverride(ctx, date, m); err != nil {
		return nil, err
	}
	return s.days.OpenDay(ctx, date)
}

func (s *energyService) ClearOverride(ctx context.Context, date time.Time) (view *DayView, err error) {
	defer observe(ctx, s.observer, "clear-mode", time.Now(), map[string]any{"date": domain.DateKey(date)}, &err)

	if err = s.modes.ClearOverride(ctx, date); err != nil {
		return nil, err
	}
	return s.days.OpenDay(ctx, date)
}

// ToggleMode flips the day's effective mode into an override and
// resynchronizes the day.
func (s *energyService) ToggleMode(ctx context.Context, date time.Time) (*DayView, error) {
	res, err := s.resolver.Resolve(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.SetOverride(ctx, date, res.Mode.Toggle())
}

func (s *energyService) Checkin(ctx context.Context, date time.Time, level int) (view *DayView, err error) {
	fields := map[string]any{"date": domain.DateKey(date), "level": level}
	defer observe(ctx, s.observer, "energy-checkin", time.Now(), fields, &err)

	if level < 0 || level > 100 {
		return nil, fmt.Errorf("energy level %d out of range 0..100", level)
	}
	m := energy.ModeForEnergy(level)
	fields["mode"] = string(m)
	if err = s.modes.SetOverride(ctx, date, m); err != nil {
		return nil, err
	}
	if err = s.settings.SetLastCheckin(ctx, date); err != nil {
		return nil, err
	}
	return s.days.OpenDay(ctx, date)
}

func (s *energyService) NeedsCheckin(ctx context.Context, today time.Time) (bool, error) {
	last, err := s.settings.LastCheckin(ctx)
	if err != nil {
		return false, err
	}
	return last != domain.DateKey(today), nil
}

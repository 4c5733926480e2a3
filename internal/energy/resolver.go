// Package energy decides which energy mode applies to a calendar date.
package energy

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// BlueThreshold is the check-in energy level below which a day runs blue.
const BlueThreshold = 40

// Origin names the rule that produced a resolved mode.
type Origin string

const (
	OriginOverride Origin = "override"
	OriginProfile  Origin = "profile"
	OriginDefault  Origin = "default"
)

// Resolution is a resolved mode and the rule it came from.
type Resolution struct {
	Mode   domain.Mode
	Origin Origin
}

// Reader is the storage the resolver reads. Implementations report malformed
// values as absent.
type Reader interface {
	GetOverride(ctx context.Context, date time.Time) (domain.Mode, bool, error)
	GetProfile(ctx context.Context) (domain.Weekdays, bool, error)
}

// Resolver computes effective modes from stored overrides and the weekly profile.
type Resolver struct {
	src Reader
}

func NewResolver(src Reader) *Resolver {
	return &Resolver{src: src}
}

// Resolve returns the mode for date: the date's override, else blue when the
// weekday is in the weekly profile, else green.
func (r *Resolver) Resolve(ctx context.Context, date time.Time) (Resolution, error) {
	override, hasOverride, err := r.src.GetOverride(ctx, date)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolving mode: %w", err)
	}
	profile, hasProfile, err := r.src.GetProfile(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolving mode: %w", err)
	}
	return Decide(date, override, hasOverride, profile, hasProfile), nil
}

// Decide applies the resolution rules to already-loaded values.
func Decide(date time.Time, override domain.Mode, hasOverride bool, blueDays domain.Weekdays, hasProfile bool) Resolution {
	if hasOverride && override.Valid() {
		return Resolution{Mode: override, Origin: OriginOverride}
	}
	if hasProfile {
		if blueDays.Contains(date.Weekday()) {
			return Resolution{Mode: domain.ModeBlue, Origin: OriginProfile}
		}
		return Resolution{Mode: domain.ModeGreen, Origin: OriginProfile}
	}
	return Resolution{Mode: domain.ModeGreen, Origin: OriginDefault}
}

// ModeForEnergy maps a 0..100 morning check-in level to a mode.
func ModeForEnergy(level int) domain.Mode {
	if level < BlueThreshold {
		return domain.ModeBlue
	}
	return domain.ModeGreen
}

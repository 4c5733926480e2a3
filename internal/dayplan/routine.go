package dayplan

import (
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// CycleDay returns the routine index used for g on date. Advance goals stop at
// the last routine day; loop goals wrap every seven days. Days are counted
// from the local date the current stage started, and dates before it count
// as day 0.
func CycleDay(g domain.Goal, date time.Time) int {
	start := g.StageStart()
	days := 0
	if !start.IsZero() {
		days = domain.DaysBetween(start, date)
	}
	if days < 0 {
		days = 0
	}
	if g.PlanMode == domain.PlanAdvance {
		return min(days, domain.RoutineDays-1)
	}
	return days % domain.RoutineDays
}

// Variant returns the task text and duration g contributes on date in mode.
// The routine entry for the cycle day overrides the goal defaults field by
// field; blank text and zero durations fall back.
func Variant(g domain.Goal, mode domain.Mode, date time.Time) (string, int) {
	text := g.DefaultText(mode)
	duration := domain.DefaultDuration(mode)

	day := CycleDay(g, date)
	if day < len(g.DailyRoutine) {
		entry := g.DailyRoutine[day]
		if t := strings.TrimSpace(entry.Text(mode)); t != "" {
			text = t
		}
		if d := entry.DurationFor(mode); d > 0 {
			duration = domain.SnapDuration(d)
		}
	}
	return text, duration
}

// defaultStart spreads goals without a configured time an hour apart from
// 09:00, in active-goal order, never starting after 23:00.
func defaultStart(index int) string {
	hour := min(9+index, 23)
	return domain.FormatClock(hour * 60)
}

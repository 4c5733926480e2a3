// Package progression computes goal streaks and advances progressive goals
// through their stages.
package progression

import (
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// StreakWindowDays bounds how far back a streak is scanned.
const StreakWindowDays = 30

// DayStatus summarizes one goal on one date.
type DayStatus int

const (
	// DayUnscheduled: the goal is not scheduled and has no task that day.
	DayUnscheduled DayStatus = iota
	// DayMissed: the goal was due (or had a task) but nothing was completed.
	DayMissed
	// DayCompleted: at least one of the goal's tasks is done.
	DayCompleted
)

// StatusOn classifies date for g from that day's tasks.
func StatusOn(g domain.Goal, date time.Time, tasks []domain.Task) DayStatus {
	hasTask := false
	for _, t := range tasks {
		if t.GoalID != g.ID {
			continue
		}
		if t.Done {
			return DayCompleted
		}
		hasTask = true
	}
	if hasTask || g.Frequency.Contains(date.Weekday()) {
		return DayMissed
	}
	return DayUnscheduled
}

// Streak counts consecutive completed days for g walking back from today
// through plans, keyed by YYYY-MM-DD. Today without a completion does not
// break the streak; unscheduled days are skipped.
func Streak(g domain.Goal, plans map[string][]domain.Task, today time.Time) int {
	today = domain.StartOfDay(today)
	streak := 0
	for i := 0; i < StreakWindowDays; i++ {
		date := today.AddDate(0, 0, -i)
		switch StatusOn(g, date, plans[domain.DateKey(date)]) {
		case DayCompleted:
			streak++
		case DayMissed:
			if i > 0 {
				return streak
			}
		}
	}
	return streak
}

// Recent returns g's status for each of the n days ending today, oldest
// first.
func Recent(g domain.Goal, plans map[string][]domain.Task, today time.Time, n int) []DayStatus {
	today = domain.StartOfDay(today)
	out := make([]DayStatus, n)
	for i := range out {
		date := today.AddDate(0, 0, i-n+1)
		out[i] = StatusOn(g, date, plans[domain.DateKey(date)])
	}
	return out
}

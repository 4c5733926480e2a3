package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrInvalidGoal = errors.New("invalid goal")

// Weekdays is a set of weekday indices, 0=Sunday..6=Saturday, kept sorted.
type Weekdays []int

// EveryDay is the frequency of a goal that runs daily.
func EveryDay() Weekdays { return Weekdays{0, 1, 2, 3, 4, 5, 6} }

// NewWeekdays dedupes and sorts days, dropping values outside 0..6.
func NewWeekdays(days ...int) Weekdays {
	seen := make(map[int]bool, len(days))
	out := make(Weekdays, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// Contains reports whether weekday w is in the set.
func (w Weekdays) Contains(day time.Weekday) bool {
	for _, d := range w {
		if d == int(day) {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts an index array, or the legacy "workdays" / "weekends"
// strings. Any other scalar means every day.
func (w *Weekdays) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*w = nil
		return nil
	case len(data) > 0 && data[0] == '[':
		var raw []json.Number
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("frequency: %w", err)
		}
		days := make([]int, 0, len(raw))
		for _, n := range raw {
			d, err := n.Int64()
			if err != nil {
				return fmt.Errorf("frequency: weekday %s: %w", n, err)
			}
			days = append(days, int(d))
		}
		*w = NewWeekdays(days...)
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "workdays":
			*w = NewWeekdays(1, 2, 3, 4, 5)
		case "weekends":
			*w = NewWeekdays(0, 6)
		default:
			*w = EveryDay()
		}
		return nil
	default:
		*w = EveryDay()
		return nil
	}
}

// RoutineEntry is one day of a goal's 7-day routine. Zero durations fall back
// to the mode defaults.
type RoutineEntry struct {
	Day           int    `json:"day,omitempty"`
	Green         string `json:"green"`
	Blue          string `json:"blue"`
	GreenDuration int    `json:"green_duration,omitempty"`
	BlueDuration  int    `json:"blue_duration,omitempty"`
}

// UnmarshalJSON maps a bare string entry into both variants.
func (e *RoutineEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = RoutineEntry{Green: s, Blue: s}
		return nil
	}
	type plain RoutineEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("routine entry: %w", err)
	}
	*e = RoutineEntry(p)
	return nil
}

// Text returns the entry text for mode.
func (e RoutineEntry) Text(m Mode) string {
	if m == ModeBlue {
		return e.Blue
	}
	return e.Green
}

// DurationFor returns the entry's duration override for mode, or 0.
func (e RoutineEntry) DurationFor(m Mode) int {
	if m == ModeBlue {
		return e.BlueDuration
	}
	return e.GreenDuration
}

// HistoryRecord is appended to a goal when one of its tasks is confirmed done.
type HistoryRecord struct {
	Date        string   `json:"date"`
	TaskID      string   `json:"taskId,omitempty"`
	Review      string   `json:"review,omitempty"`
	Rating      int      `json:"rating,omitempty"`
	Mode        Mode     `json:"energy_mode"`
	CompletedAt FlexTime `json:"completedAt,omitzero"`
}

// Goal is a recurring habit definition in the goal library.
type Goal struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Time         string          `json:"time,omitempty"`
	Frequency    Weekdays        `json:"frequency"`
	Green        string          `json:"green"`
	Blue         string          `json:"blue"`
	PlanMode     PlanMode        `json:"planMode,omitempty"`
	DailyRoutine []RoutineEntry  `json:"daily_routine,omitempty"`
	StageCount   int             `json:"stageCount,omitempty"`
	LastUpdate   FlexTime        `json:"lastUpdate,omitzero"`
	Milestones   []string        `json:"milestones,omitempty"`
	History      []HistoryRecord `json:"history,omitempty"`
	Streak       int             `json:"streak,omitempty"`
	Paused       bool            `json:"paused,omitempty"`
	CreatedAt    FlexTime        `json:"createdAt,omitzero"`
}

// UnmarshalJSON accepts numeric ids and a missing frequency, which older
// libraries used to mean "every day".
func (g *Goal) UnmarshalJSON(data []byte) error {
	type plain Goal
	aux := struct {
		*plain
		ID FlexID `json:"id"`
	}{plain: (*plain)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	g.ID = aux.ID.String()
	if g.Frequency == nil {
		g.Frequency = EveryDay()
	}
	return nil
}

// Normalize fills defaults for fields older libraries may lack.
func (g *Goal) Normalize() {
	if g.PlanMode != PlanAdvance {
		g.PlanMode = PlanLoop
	}
	if len(g.DailyRoutine) > RoutineDays {
		g.DailyRoutine = g.DailyRoutine[:RoutineDays]
	}
	if g.PlanMode == PlanAdvance && g.StageCount < 1 {
		g.StageCount = 1
	}
	if c, err := NormalizeClock(g.Time); err == nil {
		g.Time = c
	}
}

// Validate rejects goals that must not be persisted.
func (g Goal) Validate() error {
	var errs []string
	if g.ID == "" {
		errs = append(errs, "id is required")
	}
	if strings.TrimSpace(g.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(g.Green) == "" || strings.TrimSpace(g.Blue) == "" {
		errs = append(errs, "both green and blue texts are required")
	}
	if len(g.Frequency) == 0 {
		errs = append(errs, "frequency must include at least one weekday")
	}
	for _, d := range g.Frequency {
		if d < 0 || d > 6 {
			errs = append(errs, fmt.Sprintf("weekday %d out of range 0..6", d))
		}
	}
	if g.Time != "" {
		if _, err := ParseClock(g.Time); err != nil {
			errs = append(errs, fmt.Sprintf("time %q is not HH:MM", g.Time))
		}
	}
	if g.PlanMode != "" && g.PlanMode != PlanLoop && g.PlanMode != PlanAdvance {
		errs = append(errs, fmt.Sprintf("unknown plan mode %q", g.PlanMode))
	}
	if len(g.DailyRoutine) > RoutineDays {
		errs = append(errs, fmt.Sprintf("daily routine has %d entries, max %d", len(g.DailyRoutine), RoutineDays))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidGoal, strings.Join(errs, "; "))
	}
	return nil
}

// IsActiveOn reports whether the goal schedules a task on day.
// Paused goals and goals without weekdays are never active.
func (g Goal) IsActiveOn(day time.Weekday) bool {
	return !g.Paused && g.Frequency.Contains(day)
}

// StageStart is the anchor of the current routine cycle.
func (g Goal) StageStart() time.Time {
	if !g.LastUpdate.IsZero() {
		return g.LastUpdate.Time
	}
	return g.CreatedAt.Time
}

// DefaultText returns the goal's default task text for mode.
func (g Goal) DefaultText(m Mode) string {
	if m == ModeBlue {
		return g.Blue
	}
	return g.Green
}

// FindGoal returns the goal with id, or nil.
func FindGoal(goals []Goal, id string) *Goal {
	for i := range goals {
		if goals[i].ID == id {
			return &goals[i]
		}
	}
	return nil
}

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidTask = errors.New("invalid task")

// Task is one scheduled item on one date.
type Task struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Time        string   `json:"time"`
	Duration    int      `json:"duration"`
	Type        Mode     `json:"type"`
	Source      Source   `json:"source"`
	GoalID      string   `json:"goalId,omitempty"`
	Done        bool     `json:"done"`
	Review      string   `json:"review,omitempty"`
	CompletedAt FlexTime `json:"completedAt,omitzero"`
}

// UnmarshalJSON accepts numeric id and goalId values from older plans.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		ID     FlexID `json:"id"`
		GoalID FlexID `json:"goalId"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.ID = aux.ID.String()
	t.GoalID = aux.GoalID.String()
	return nil
}

// NewManualTask builds a user-authored task.
func NewManualTask(text, clock string, duration int, mode Mode) Task {
	return Task{
		ID:       NewID(),
		Text:     text,
		Time:     clock,
		Duration: duration,
		Type:     mode,
		Source:   SourceManual,
	}
}

// StartMinute returns the task start in minutes after midnight.
func (t Task) StartMinute() int {
	return ClockMinutes(t.Time)
}

// EndMinute returns the exclusive end of the task interval.
func (t Task) EndMinute() int {
	return t.StartMinute() + t.Duration
}

// IsHabit reports whether the task is owned by a goal.
func (t Task) IsHabit() bool {
	return t.Source == SourceHabit
}

// SnapDuration rounds minutes to the nearest multiple of the minimum task
// length, never going below it.
func SnapDuration(minutes int) int {
	if minutes < MinTaskDurationMin {
		return MinTaskDurationMin
	}
	return (minutes + MinTaskDurationMin/2) / MinTaskDurationMin * MinTaskDurationMin
}

// Normalize repairs fields older or hand-edited plans may lack.
func (t *Task) Normalize() {
	if t.Source == "" {
		t.Source = SourceManual
	}
	if t.Duration <= 0 {
		t.Duration = ManualDurationMin
	} else {
		t.Duration = SnapDuration(t.Duration)
	}
	if c, err := NormalizeClock(t.Time); err == nil {
		t.Time = c
	}
	if !t.Type.Valid() {
		t.Type = ModeGreen
	}
	if t.Source == SourceManual {
		t.GoalID = ""
	}
}

// Validate checks the invariants a task must satisfy before it is saved.
func (t Task) Validate() error {
	var errs []string
	if t.ID == "" {
		errs = append(errs, "id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		errs = append(errs, "text is required")
	}
	if _, err := ParseClock(t.Time); err != nil {
		errs = append(errs, fmt.Sprintf("time %q is not HH:MM", t.Time))
	}
	if t.Duration < MinTaskDurationMin {
		errs = append(errs, fmt.Sprintf("duration must be at least %d minutes", MinTaskDurationMin))
	} else if t.Duration%MinTaskDurationMin != 0 {
		errs = append(errs, fmt.Sprintf("duration must be a multiple of %d minutes", MinTaskDurationMin))
	}
	if t.Source != SourceManual && t.Source != SourceHabit {
		errs = append(errs, fmt.Sprintf("unknown source %q", t.Source))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTask, strings.Join(errs, "; "))
	}
	return nil
}

// SortTasks orders a day's tasks by start time, ties broken by id.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		mi, mj := tasks[i].StartMinute(), tasks[j].StartMinute()
		if mi != mj {
			return mi < mj
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// FindTask returns the index of the task with id, or -1.
func FindTask(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

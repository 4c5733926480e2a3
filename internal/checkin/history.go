package checkin

import (
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// Match describes how a completed task was tied to a goal.
type Match int

const (
	// MatchNone: no goal could be identified.
	MatchNone Match = iota
	// MatchByID: the task's goalId names a goal in the library.
	MatchByID
	// MatchByText: degraded path for tasks without a goalId, accepted only
	// when exactly one goal has a variant text equal to the task text.
	MatchByText
	// MatchAmbiguous: several goals share the task's text.
	MatchAmbiguous
)

func (m Match) String() string {
	switch m {
	case MatchByID:
		return "goal-id"
	case MatchByText:
		return "text"
	case MatchAmbiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// OwningGoal finds the goal a habit task belongs to. It returns the goal's
// index in goals, or -1.
func OwningGoal(t domain.Task, goals []domain.Goal) (int, Match) {
	if !t.IsHabit() {
		return -1, MatchNone
	}
	if t.GoalID != "" {
		for i := range goals {
			if goals[i].ID == t.GoalID {
				return i, MatchByID
			}
		}
		return -1, MatchNone
	}

	text := strings.TrimSpace(t.Text)
	found := -1
	for i, g := range goals {
		if text != "" && (strings.TrimSpace(g.Green) == text || strings.TrimSpace(g.Blue) == text) {
			if found >= 0 {
				return -1, MatchAmbiguous
			}
			found = i
		}
	}
	if found < 0 {
		return -1, MatchNone
	}
	return found, MatchByText
}

// NewRecord builds the history entry for a confirmed task.
func NewRecord(date time.Time, t domain.Task, rating int) domain.HistoryRecord {
	return domain.HistoryRecord{
		Date:        domain.DateKey(date),
		TaskID:      t.ID,
		Review:      t.Review,
		Rating:      rating,
		Mode:        t.Type,
		CompletedAt: t.CompletedAt,
	}
}

// AppendRecord adds rec to g's history, replacing an earlier record for the
// same task and date.
func AppendRecord(g *domain.Goal, rec domain.HistoryRecord) {
	RemoveRecord(g, rec.Date, rec.TaskID)
	g.History = append(g.History, rec)
}

// RemoveRecord drops the record for taskID on date. It reports whether one
// was removed.
func RemoveRecord(g *domain.Goal, date, taskID string) bool {
	if taskID == "" {
		return false
	}
	out := g.History[:0]
	removed := false
	for _, h := range g.History {
		if h.Date == date && h.TaskID == taskID {
			removed = true
			continue
		}
		out = append(out, h)
	}
	g.History = out
	return removed
}

// ReviewsSince returns the non-empty reviews recorded on or after since, oldest
// first.
func ReviewsSince(g domain.Goal, since time.Time) []string {
	cutoff := ""
	if !since.IsZero() {
		cutoff = domain.DateKey(since)
	}
	var reviews []string
	for _, h := range g.History {
		if h.Date >= cutoff && strings.TrimSpace(h.Review) != "" {
			reviews = append(reviews, h.Review)
		}
	}
	return reviews
}

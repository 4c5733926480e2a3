// Package checkin implements the completion and review workflow of a task.
package checkin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

var (
	ErrAlreadyDone   = errors.New("task is already done")
	ErrNotReviewing  = errors.New("task is not awaiting review")
	ErrNotDone       = errors.New("task is not done")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// MaxRating is the top of the optional 1..5 satisfaction rating.
const MaxRating = 5

// State is a task's position in the check-in workflow.
type State int

const (
	StatePending State = iota
	StateReviewing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateReviewing:
		return "reviewing"
	case StateDone:
		return "done"
	default:
		return "pending"
	}
}

// StateOf returns the persisted state of t. Reviewing is never persisted.
func StateOf(t domain.Task) State {
	if t.Done {
		return StateDone
	}
	return StatePending
}

// Review is an open capture step for one task. The task stays not-done until
// Confirm succeeds.
type Review struct {
	Task  domain.Task
	Date  time.Time
	state State
}

// Begin moves a pending task into review.
func Begin(t domain.Task, date time.Time) (*Review, error) {
	if t.Done {
		return nil, fmt.Errorf("task %s: %w", t.ID, ErrAlreadyDone)
	}
	return &Review{Task: t, Date: date, state: StateReviewing}, nil
}

// State reports where the review is.
func (r *Review) State() State { return r.state }

// Confirm completes the task with an optional reflection and a rating
// (0 for none). It returns the task to persist.
func (r *Review) Confirm(review string, rating int, now time.Time) (domain.Task, error) {
	if r.state != StateReviewing {
		return domain.Task{}, ErrNotReviewing
	}
	if rating < 0 || rating > MaxRating {
		return domain.Task{}, fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	t := r.Task
	t.Done = true
	t.Review = strings.TrimSpace(review)
	t.CompletedAt = domain.At(now)
	r.Task = t
	r.state = StateDone
	return t, nil
}

// Undo reopens a done task, clearing its review and completion time.
func Undo(t domain.Task) (domain.Task, error) {
	if !t.Done {
		return t, fmt.Errorf("task %s: %w", t.ID, ErrNotDone)
	}
	t.Done = false
	t.Review = ""
	t.CompletedAt = domain.FlexTime{}
	return t, nil
}

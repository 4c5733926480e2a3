package progression

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/lifeos/internal/checkin"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/planner"
)

var (
	ErrNotAdvanceMode    = errors.New("goal is not in advance mode")
	ErrAdvanceInProgress = errors.New("goal is already being advanced")
	ErrGenerationFailed  = errors.New("stage generation failed")
	ErrInvalidRating     = errors.New("rating must be too-easy, just-right or too-hard")
)

// Generator produces the next stage proposal for a goal.
type Generator interface {
	Generate(ctx context.Context, req planner.Request) (*planner.Proposal, error)
}

// Advancer runs stage advancement, allowing one request per goal at a time.
type Advancer struct {
	gen Generator
	now func() time.Time

	mu       sync.Mutex
	inflight map[string]bool
}

func NewAdvancer(gen Generator, now func() time.Time) *Advancer {
	if now == nil {
		now = time.Now
	}
	return &Advancer{gen: gen, now: now, inflight: make(map[string]bool)}
}

// InFlight reports whether goalID is currently being advanced.
func (a *Advancer) InFlight(goalID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inflight[goalID]
}

func (a *Advancer) acquire(goalID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inflight[goalID] {
		return false
	}
	a.inflight[goalID] = true
	return true
}

func (a *Advancer) release(goalID string) {
	a.mu.Lock()
	delete(a.inflight, goalID)
	a.mu.Unlock()
}

// Advance asks the generator for g's next stage and returns the updated goal.
// g itself is never modified. When ctx ends before the response arrives the
// result is discarded.
func (a *Advancer) Advance(ctx context.Context, g domain.Goal, rating domain.Rating) (domain.Goal, error) {
	if g.PlanMode != domain.PlanAdvance {
		return g, fmt.Errorf("goal %s: %w", g.ID, ErrNotAdvanceMode)
	}
	if !domain.ValidRatings[rating] {
		return g, fmt.Errorf("%w: got %q", ErrInvalidRating, rating)
	}
	if !a.acquire(g.ID) {
		return g, fmt.Errorf("goal %s: %w", g.ID, ErrAdvanceInProgress)
	}
	defer a.release(g.ID)

	proposal, err := a.gen.Generate(ctx, StageRequest(g, rating))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return g, fmt.Errorf("%w: %w", ErrGenerationFailed, ctxErr)
	}
	if err != nil {
		return g, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	next, err := ApplyStage(g, proposal, a.now())
	if err != nil {
		return g, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return next, nil
}

// StageRequest builds the generation request for the stage after g's
// current one.
func StageRequest(g domain.Goal, rating domain.Rating) planner.Request {
	return planner.Request{
		GoalText: g.Title,
		Context: planner.RequestContext{
			Mode:         g.PlanMode,
			CurrentStage: CurrentStageLabel(g),
			Rating:       rating,
			Reviews:      checkin.ReviewsSince(g, g.StageStart()),
		},
	}
}

// CurrentStageLabel names the stage g is in: its milestone when one exists.
func CurrentStageLabel(g domain.Goal) string {
	stage := max(g.StageCount, 1)
	if stage <= len(g.Milestones) {
		if m := strings.TrimSpace(g.Milestones[stage-1]); m != "" {
			return m
		}
	}
	return fmt.Sprintf("Stage %d", stage)
}

// ApplyStage returns g moved to the next stage described by p.
func ApplyStage(g domain.Goal, p *planner.Proposal, now time.Time) (domain.Goal, error) {
	if p == nil {
		return g, errors.New("empty proposal")
	}
	prop := *p
	prop.Normalize()
	if err := prop.ValidateStage(); err != nil {
		return g, err
	}
	next := g
	next.StageCount = max(g.StageCount, 1) + 1
	next.LastUpdate = domain.At(now)
	next.DailyRoutine = append([]domain.RoutineEntry(nil), prop.DailyRoutine...)
	next.Milestones = appendNew(g.Milestones, prop.Milestones)
	if t := prop.Green; t != "" {
		next.Green = t
	}
	if t := prop.Blue; t != "" {
		next.Blue = t
	}
	return next, nil
}

// appendNew returns have followed by the entries of add it does not contain.
func appendNew(have, add []string) []string {
	out := append([]string(nil), have...)
	seen := make(map[string]bool, len(have)+len(add))
	for _, m := range have {
		seen[m] = true
	}
	for _, m := range add {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

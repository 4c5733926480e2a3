// Package planner turns goal descriptions and stage feedback into prompts for
// the plan-generation model and validates the proposals it returns.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/llm"
)

// RequestContext carries the optional inputs of a generation request.
type RequestContext struct {
	Mode         domain.PlanMode `json:"mode,omitempty"`
	CurrentStage string          `json:"currentStage,omitempty"`
	Rating       domain.Rating   `json:"rating,omitempty"`
	Reviews      []string        `json:"reviews,omitempty"`
}

// Request asks for a goal plan. A request naming a current stage asks for
// the stage after it; otherwise it asks for the first stage.
type Request struct {
	GoalText string         `json:"goalText"`
	Context  RequestContext `json:"context"`
}

// IsNextStage reports whether the request continues an existing goal.
func (r Request) IsNextStage() bool {
	return r.Context.CurrentStage != ""
}

// Proposal is a generated plan for one stage of a goal.
type Proposal struct {
	Title        string                `json:"title,omitempty"`
	Green        string                `json:"green"`
	Blue         string                `json:"blue"`
	Milestones   []string              `json:"milestones,omitempty"`
	DailyRoutine []domain.RoutineEntry `json:"daily_routine"`
}

// Normalize trims texts, drops blank milestones and caps the routine at one
// cycle. A routine entry missing one variant borrows the other.
func (p *Proposal) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Green = strings.TrimSpace(p.Green)
	p.Blue = strings.TrimSpace(p.Blue)

	milestones := make([]string, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		if m = strings.TrimSpace(m); m != "" {
			milestones = append(milestones, m)
		}
	}
	p.Milestones = milestones

	if len(p.DailyRoutine) > domain.RoutineDays {
		p.DailyRoutine = p.DailyRoutine[:domain.RoutineDays]
	}
	for i := range p.DailyRoutine {
		e := &p.DailyRoutine[i]
		e.Green = strings.TrimSpace(e.Green)
		e.Blue = strings.TrimSpace(e.Blue)
		if e.Green == "" {
			e.Green = e.Blue
		}
		if e.Blue == "" {
			e.Blue = e.Green
		}
		e.Day = i + 1
	}
}

// ValidateStage accepts a proposal usable as a goal's next stage.
func (p Proposal) ValidateStage() error {
	if len(p.DailyRoutine) == 0 {
		return errors.New("daily_routine is empty")
	}
	if len(p.DailyRoutine) > domain.RoutineDays {
		return fmt.Errorf("daily_routine has %d entries, max %d", len(p.DailyRoutine), domain.RoutineDays)
	}
	for i, e := range p.DailyRoutine {
		if strings.TrimSpace(e.Green) == "" && strings.TrimSpace(e.Blue) == "" {
			return fmt.Errorf("daily_routine day %d has no task", i+1)
		}
	}
	return nil
}

// ValidateDraft accepts a proposal usable to create a new goal.
func (p Proposal) ValidateDraft() error {
	var errs []error
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if strings.TrimSpace(p.Green) == "" || strings.TrimSpace(p.Blue) == "" {
		errs = append(errs, errors.New("both green and blue are required"))
	}
	if len(p.DailyRoutine) > 0 {
		if err := p.ValidateStage(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Service generates proposals with a language model.
type Service struct {
	client llm.LLMClient
}

func NewService(client llm.LLMClient) *Service {
	return &Service{client: client}
}

// Generate asks the model for a proposal matching req and validates it.
func (s *Service) Generate(ctx context.Context, req Request) (*Proposal, error) {
	if strings.TrimSpace(req.GoalText) == "" {
		return nil, errors.New("goal text is required")
	}
	task := llm.TaskGoalDraft
	validate := Proposal.ValidateDraft
	if req.IsNextStage() {
		task = llm.TaskStageAdvance
		validate = Proposal.ValidateStage
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         task,
		SystemPrompt: systemPrompt,
		UserPrompt:   BuildUserPrompt(req),
	})
	if err != nil {
		return nil, err
	}

	p, err := llm.ExtractJSON(resp.Text, func(p Proposal) error {
		p.Normalize()
		return validate(p)
	})
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// BuildUserPrompt renders the user message for req.
func BuildUserPrompt(req Request) string {
	goal := strings.TrimSpace(req.GoalText)
	if req.IsNextStage() {
		rating := req.Context.Rating
		if rating == "" {
			rating = domain.RatingJustRight
		}
		reviews, _ := json.Marshal(nonNil(req.Context.Reviews))
		return fmt.Sprintf(nextStagePromptTmpl, goal, req.Context.CurrentStage, rating, reviews)
	}
	brief := loopModeBrief
	if req.Context.Mode == domain.PlanAdvance {
		brief = advanceModeBrief
	}
	return fmt.Sprintf(initialPromptTmpl, goal, brief)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

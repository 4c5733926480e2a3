package service

import (
	"context"

	"github.com/alexanderramin/lifeos/internal/llm"
	"github.com/alexanderramin/lifeos/internal/planner"
	"github.com/alexanderramin/lifeos/internal/progression"
	"github.com/alexanderramin/lifeos/internal/repository"
)

// settingsGenerator builds the model client on every call, so a key saved
// with `config set-key` applies without a restart. A key in the config
// (from LIFEOS_API_KEY) wins over the stored one.
type settingsGenerator struct {
	cfg      llm.LLMConfig
	settings repository.SettingsRepo
	observer llm.Observer
}

// NewPlanGenerator returns the plan generator used for goal drafts and stage
// advancement.
func NewPlanGenerator(cfg llm.LLMConfig, settings repository.SettingsRepo, observer llm.Observer) progression.Generator {
	if observer == nil {
		observer = llm.NoopObserver{}
	}
	return &settingsGenerator{cfg: cfg, settings: settings, observer: observer}
}

func (g *settingsGenerator) Generate(ctx context.Context, req planner.Request) (*planner.Proposal, error) {
	cfg := g.cfg
	if cfg.APIKey == "" && g.settings != nil {
		key, err := g.settings.APIKey(ctx)
		if err != nil {
			return nil, err
		}
		cfg.APIKey = key
	}
	client, err := llm.NewClient(cfg, g.observer)
	if err != nil {
		return nil, err
	}
	return planner.NewService(client).Generate(ctx, req)
}

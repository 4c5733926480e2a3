package llm

import (
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of generation being requested.
type TaskType string

const (
	TaskGoalDraft    TaskType = "goal_draft"
	TaskStageAdvance TaskType = "stage_advance"
)

// Provider selects the wire protocol used to reach the model.
type Provider string

const (
	// ProviderOpenAI speaks the OpenAI-compatible chat completions API.
	ProviderOpenAI Provider = "openai"
	// ProviderOllama speaks the Ollama generate API.
	ProviderOllama Provider = "ollama"
)

const (
	defaultOpenAIEndpoint = "https://api.siliconflow.cn/v1"
	defaultOpenAIModel    = "deepseek-ai/DeepSeek-V3"
	defaultOllamaEndpoint = "http://localhost:11434"
	defaultOllamaModel    = "llama3.2"
)

// TaskConfig holds per-task generation parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for plan generation.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Provider   Provider
	Endpoint   string
	Model      string
	APIKey     string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig targets the hosted OpenAI-compatible endpoint. The API key
// is left empty; callers fill it from settings or the environment.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    true,
		Provider:   ProviderOpenAI,
		Endpoint:   defaultOpenAIEndpoint,
		Model:      defaultOpenAIModel,
		TimeoutMs:  60000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskGoalDraft:    {Temperature: 0.7, MaxTokens: 2048, TimeoutMs: 60000},
			TaskStageAdvance: {Temperature: 0.7, MaxTokens: 2048, TimeoutMs: 60000},
		},
	}
}

// DefaultEndpoint returns the endpoint used by p when none is configured.
func DefaultEndpoint(p Provider) string {
	if p == ProviderOllama {
		return defaultOllamaEndpoint
	}
	return defaultOpenAIEndpoint
}

// DefaultModel returns the model used by p when none is configured.
func DefaultModel(p Provider) string {
	if p == ProviderOllama {
		return defaultOllamaModel
	}
	return defaultOpenAIModel
}

// LoadConfig reads configuration from LIFEOS_LLM_* environment variables,
// falling back to defaults for any unset values. Switching the provider
// without naming an endpoint or model selects that provider's defaults.
func LoadConfig() LLMConfig {
	return ApplyEnv(DefaultConfig())
}

// ApplyEnv overlays environment overrides onto cfg.
func ApplyEnv(cfg LLMConfig) LLMConfig {
	if v := os.Getenv("LIFEOS_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("LIFEOS_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := strings.ToLower(os.Getenv("LIFEOS_LLM_PROVIDER")); v != "" && Provider(v) != cfg.Provider {
		if p := Provider(v); p == ProviderOpenAI || p == ProviderOllama {
			cfg.Provider = p
			cfg.Endpoint = DefaultEndpoint(p)
			cfg.Model = DefaultModel(p)
		}
	}
	if v := os.Getenv("LIFEOS_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("LIFEOS_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("LIFEOS_API_KEY"); v != "" {
		cfg.APIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("LIFEOS_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("LIFEOS_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskGoalDraft, "LIFEOS_LLM_DRAFT_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskStageAdvance, "LIFEOS_LLM_ADVANCE_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	if cfg.Tasks == nil {
		cfg.Tasks = make(map[TaskType]TaskConfig)
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}

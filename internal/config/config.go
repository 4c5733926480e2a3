// Package config loads the optional YAML configuration for LifeOS and applies
// environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/lifeos/internal/llm"
	"github.com/alexanderramin/lifeos/internal/timeline"
)

// FileName is the config file looked up in the data directory.
const FileName = "config.yaml"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendDiskv  = "diskv"
)

// Config is the top-level LifeOS configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Timeline TimelineConfig `yaml:"timeline"`
	LLM      LLMSection     `yaml:"llm"`
	Log      LogConfig      `yaml:"log"`

	// DataDir holds the store and the config file. It comes from LIFEOS_HOME
	// or the OS default, never from the file itself.
	DataDir string `yaml:"-"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Path is the SQLite file or the diskv directory. Relative paths are
	// resolved against the data directory.
	Path string `yaml:"path"`
}

// TimelineConfig sets the geometry of the terminal timeline track.
type TimelineConfig struct {
	PixelsPerMinute float64 `yaml:"pixels_per_minute"`
	TrackWidth      float64 `yaml:"track_width"`
	StartHour       int     `yaml:"start_hour"`
	DragThreshold   float64 `yaml:"drag_threshold"`
	EdgeZone        float64 `yaml:"edge_zone"`
}

// LLMSection overrides the plan-generation defaults. Zero values keep them.
type LLMSection struct {
	Enabled    *bool  `yaml:"enabled"`
	LogCalls   bool   `yaml:"log_calls"`
	Provider   string `yaml:"provider"`
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	MaxRetries *int   `yaml:"max_retries"`
}

// LogConfig controls the structured log written to stderr.
type LogConfig struct {
	// Level is debug, info, warn or error. Empty disables use-case logging.
	Level string `yaml:"level"`
}

// Load reads the config file in the data directory, if there is one, and
// applies environment overrides.
func Load() (*Config, error) {
	dir := DataDir()
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := parse(data, dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFile reads the config at path, using dataDir for relative paths.
func LoadFile(path, dataDir string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return parse(data, dataDir)
}

// Parse unmarshals YAML bytes into a validated Config rooted at the default
// data directory, with environment overrides applied.
func Parse(data []byte) (*Config, error) {
	return parse(data, DataDir())
}

func parse(data []byte, dataDir string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.DataDir = dataDir
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("LIFEOS_BACKEND")); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("LIFEOS_DB")); v != "" {
		c.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("LIFEOS_LOG")); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case BackendDiskv:
			c.Storage.Path = "store"
		default:
			c.Storage.Path = "lifeos.db"
		}
	}
	if c.Storage.Path != ":memory:" && !filepath.IsAbs(c.Storage.Path) {
		c.Storage.Path = filepath.Join(c.DataDir, c.Storage.Path)
	}

	if c.Timeline.PixelsPerMinute == 0 {
		c.Timeline.PixelsPerMinute = timeline.DefaultGeometry.PixelsPerMinute
	}
	if c.Timeline.TrackWidth == 0 {
		c.Timeline.TrackWidth = timeline.DefaultGeometry.TrackWidth
	}
	if c.Timeline.DragThreshold == 0 {
		c.Timeline.DragThreshold = timeline.DefaultDragThreshold
	}
	if c.Timeline.EdgeZone == 0 {
		c.Timeline.EdgeZone = timeline.DefaultEdgeZone
	}
}

func (c *Config) validate() error {
	var errs []string
	switch c.Storage.Backend {
	case BackendSQLite, BackendDiskv:
	default:
		errs = append(errs, fmt.Sprintf("storage.backend %q must be %s or %s", c.Storage.Backend, BackendSQLite, BackendDiskv))
	}
	if c.Storage.Backend == BackendDiskv && c.Storage.Path == ":memory:" {
		errs = append(errs, "storage.path :memory: needs the sqlite backend")
	}
	if c.Timeline.PixelsPerMinute < 0 {
		errs = append(errs, "timeline.pixels_per_minute must be positive")
	}
	if c.Timeline.TrackWidth < 0 {
		errs = append(errs, "timeline.track_width must be positive")
	}
	if c.Timeline.StartHour < 0 || c.Timeline.StartHour > 23 {
		errs = append(errs, fmt.Sprintf("timeline.start_hour %d out of range 0..23", c.Timeline.StartHour))
	}
	if c.Timeline.DragThreshold < 0 || c.Timeline.EdgeZone < 0 {
		errs = append(errs, "timeline.drag_threshold and timeline.edge_zone must not be negative")
	}
	switch llm.Provider(strings.ToLower(c.LLM.Provider)) {
	case "", llm.ProviderOpenAI, llm.ProviderOllama:
	default:
		errs = append(errs, fmt.Sprintf("llm.provider %q must be openai or ollama", c.LLM.Provider))
	}
	if c.LLM.TimeoutMs < 0 {
		errs = append(errs, "llm.timeout_ms must not be negative")
	}
	if c.LLM.MaxRetries != nil && *c.LLM.MaxRetries < 0 {
		errs = append(errs, "llm.max_retries must not be negative")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		errs = append(errs, fmt.Sprintf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Geometry returns the timeline track geometry.
func (c *Config) Geometry() timeline.Geometry {
	return timeline.Geometry{
		PixelsPerMinute: c.Timeline.PixelsPerMinute,
		TrackWidth:      c.Timeline.TrackWidth,
		OriginMinute:    c.Timeline.StartHour * 60,
	}
}

// ControllerOptions returns the gesture tuning for the timeline controller.
func (c *Config) ControllerOptions() []timeline.ControllerOption {
	return []timeline.ControllerOption{
		timeline.WithDragThreshold(c.Timeline.DragThreshold),
		timeline.WithEdgeZone(c.Timeline.EdgeZone),
	}
}

// LLMConfig layers the file's llm section over the defaults, then the
// LIFEOS_LLM_* environment on top.
func (c *Config) LLMConfig() llm.LLMConfig {
	cfg := llm.DefaultConfig()
	if c.LLM.Enabled != nil {
		cfg.Enabled = *c.LLM.Enabled
	}
	cfg.LogCalls = cfg.LogCalls || c.LLM.LogCalls
	if p := llm.Provider(strings.ToLower(c.LLM.Provider)); p != "" && p != cfg.Provider {
		cfg.Provider = p
		cfg.Endpoint = llm.DefaultEndpoint(p)
		cfg.Model = llm.DefaultModel(p)
	}
	if c.LLM.Endpoint != "" {
		cfg.Endpoint = strings.TrimRight(c.LLM.Endpoint, "/")
	}
	if c.LLM.Model != "" {
		cfg.Model = c.LLM.Model
	}
	if c.LLM.TimeoutMs > 0 {
		cfg.TimeoutMs = c.LLM.TimeoutMs
		tasks := make(map[llm.TaskType]llm.TaskConfig, len(cfg.Tasks))
		for k, tc := range cfg.Tasks {
			tc.TimeoutMs = c.LLM.TimeoutMs
			tasks[k] = tc
		}
		cfg.Tasks = tasks
	}
	if c.LLM.MaxRetries != nil {
		cfg.MaxRetries = *c.LLM.MaxRetries
	}
	return llm.ApplyEnv(cfg)
}

// LogLevel returns the configured level and whether logging is on.
func (c *Config) LogLevel() (slog.Level, bool) {
	if c.Log.Level == "" {
		return slog.LevelInfo, false
	}
	lvl, _ := parseLevel(c.Log.Level)
	return lvl, true
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "", "info", "1", "true":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

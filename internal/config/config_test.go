package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/lifeos/internal/llm"
	"github.com/alexanderramin/lifeos/internal/timeline"
)

const fullYAML = `
storage:
  backend: diskv
  path: data/kv

timeline:
  pixels_per_minute: 0.5
  track_width: 80
  start_hour: 6
  drag_threshold: 1
  edge_zone: 1

llm:
  enabled: false
  provider: ollama
  model: qwen2.5
  timeout_ms: 90000
  max_retries: 0

log:
  level: debug
`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LIFEOS_BACKEND", "LIFEOS_DB", "LIFEOS_LOG",
		"LIFEOS_LLM_ENABLED", "LIFEOS_LLM_LOG_CALLS", "LIFEOS_LLM_PROVIDER",
		"LIFEOS_LLM_ENDPOINT", "LIFEOS_LLM_MODEL", "LIFEOS_API_KEY",
		"LIFEOS_LLM_TIMEOUT_MS", "LIFEOS_LLM_MAX_RETRIES",
		"LIFEOS_LLM_DRAFT_TIMEOUT_MS", "LIFEOS_LLM_ADVANCE_TIMEOUT_MS",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("LIFEOS_HOME", t.TempDir())
}

func TestParse_FullConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]byte(fullYAML))
	require.NoError(t, err)

	assert.Equal(t, BackendDiskv, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(cfg.DataDir, "data", "kv"), cfg.Storage.Path)

	assert.Equal(t, timeline.Geometry{PixelsPerMinute: 0.5, TrackWidth: 80, OriginMinute: 360}, cfg.Geometry())
	assert.Len(t, cfg.ControllerOptions(), 2)

	lc := cfg.LLMConfig()
	assert.False(t, lc.Enabled)
	assert.Equal(t, llm.ProviderOllama, lc.Provider)
	assert.Equal(t, llm.DefaultEndpoint(llm.ProviderOllama), lc.Endpoint)
	assert.Equal(t, "qwen2.5", lc.Model)
	assert.Equal(t, 90000, lc.TimeoutMs)
	assert.Equal(t, 90000, lc.TaskTimeout(llm.TaskStageAdvance))
	assert.Zero(t, lc.MaxRetries)

	lvl, on := cfg.LogLevel()
	assert.True(t, on)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestParse_EmptyUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(cfg.DataDir, "lifeos.db"), cfg.Storage.Path)
	assert.Equal(t, timeline.DefaultGeometry, cfg.Geometry())
	assert.Equal(t, llm.DefaultConfig(), cfg.LLMConfig())

	_, on := cfg.LogLevel()
	assert.False(t, on)
}

func TestParse_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIFEOS_BACKEND", "SQLite")
	t.Setenv("LIFEOS_DB", ":memory:")
	t.Setenv("LIFEOS_LOG", "warn")
	t.Setenv("LIFEOS_LLM_MODEL", "env-model")

	cfg, err := Parse([]byte(fullYAML))
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, ":memory:", cfg.Storage.Path)
	assert.Equal(t, "env-model", cfg.LLMConfig().Model)

	lvl, _ := cfg.LogLevel()
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestParse_ValidationErrors(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"backend":    "storage:\n  backend: redis\n",
		"start hour": "timeline:\n  start_hour: 24\n",
		"provider":   "llm:\n  provider: anthropic\n",
		"retries":    "llm:\n  max_retries: -1\n",
		"log level":  "log:\n  level: loud\n",
		"memory":     "storage:\n  backend: diskv\n  path: \":memory:\"\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Parse([]byte("storage: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, os.Getenv("LIFEOS_HOME"), cfg.DataDir)
}

func TestLoad_ReadsFileInDataDir(t *testing.T) {
	clearEnv(t)
	dir := os.Getenv("LIFEOS_HOME")
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("storage:\n  path: /abs/lifeos.db\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/abs/lifeos.db", cfg.Storage.Path)
}

func TestLoadFile_Missing(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	assert.Error(t, err)
}

func TestEnsureDataDir(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	cfg := &Config{DataDir: root, Storage: StorageConfig{Backend: BackendDiskv, Path: filepath.Join(root, "a", "b")}}
	require.NoError(t, cfg.EnsureDataDir())
	info, err := os.Stat(filepath.Join(root, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDefaultDataDirLinux(t *testing.T) {
	home, _ := os.UserHomeDir()

	t.Setenv("XDG_DATA_HOME", "")
	assert.Equal(t, filepath.Join(home, ".local", "share", "lifeos"), defaultDataDirForOS("linux"))

	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, filepath.Join("/custom/data", "lifeos"), defaultDataDirForOS("linux"))
}

func TestDefaultDataDirMacOS(t *testing.T) {
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "Library", "Application Support", "lifeos"), defaultDataDirForOS("darwin"))
}

func TestDataDir_HomeOverride(t *testing.T) {
	t.Setenv("LIFEOS_HOME", "/srv/lifeos")
	assert.Equal(t, "/srv/lifeos", DataDir())
}

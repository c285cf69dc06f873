package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"STUDYPLAN_DB",
	"STUDYPLAN_LOG_FILE",
	"STUDYPLAN_LOG_LEVEL",
	"STUDYPLAN_KEEP_AWAKE",
	"STUDYPLAN_AI_TIMEOUT",
	"STUDYPLAN_ADVICE_MODEL",
	"STUDYPLAN_VISION_MODEL",
	"GEMINI_API_KEY",
}

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "studyplan.db", filepath.Base(cfg.DBPath))
	assert.Equal(t, filepath.Join(filepath.Dir(cfg.DBPath), "studyplan.log"), cfg.LogFile)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.KeepAwake)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, DefaultAdviceModel, cfg.AI.AdviceModel)
	assert.Equal(t, DefaultVisionModel, cfg.AI.VisionModel)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("STUDYPLAN_DB", filepath.Join(dir, "x.db"))
	t.Setenv("STUDYPLAN_LOG_LEVEL", "debug")
	t.Setenv("STUDYPLAN_KEEP_AWAKE", "false")
	t.Setenv("STUDYPLAN_AI_TIMEOUT", "15s")
	t.Setenv("GEMINI_API_KEY", " key ")
	t.Setenv("STUDYPLAN_ADVICE_MODEL", "gemini-x")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "x.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "studyplan.log"), cfg.LogFile)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.KeepAwake)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "key", cfg.AI.APIKey)
	assert.Equal(t, "gemini-x", cfg.AI.AdviceModel)
}

func TestLoadDotEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "GEMINI_API_KEY=from-file\nSTUDYPLAN_DB=" + filepath.Join(dir, "f.db") + "\nSTUDYPLAN_VISION_MODEL=file-model\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// Real environment takes precedence over the file.
	t.Setenv("STUDYPLAN_VISION_MODEL", "env-model")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AI.APIKey)
	assert.Equal(t, filepath.Join(dir, "f.db"), cfg.DBPath)
	assert.Equal(t, "env-model", cfg.AI.VisionModel)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STUDYPLAN_LOG_LEVEL", "loud"},
		{"STUDYPLAN_KEEP_AWAKE", "maybe"},
		{"STUDYPLAN_AI_TIMEOUT", "soon"},
		{"STUDYPLAN_AI_TIMEOUT", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("STUDYPLAN_DB", filepath.Join(t.TempDir(), "x.db"))
			t.Setenv(tt.key, tt.value)
			_, err := Load(noEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestDefaultLogFile(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", "studyplan.log"), DefaultLogFile(filepath.Join("a", "b", "c.db")))
	assert.Equal(t, filepath.Join(os.TempDir(), "studyplan.log"), DefaultLogFile(":memory:"))
}

// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sadopc/studyplan/internal/store"
)

const (
	DefaultAdviceModel = "gemini-2.5-flash"
	DefaultVisionModel = "gemini-3-pro-preview"
	DefaultAITimeout   = 60 * time.Second
)

type Config struct {
	DBPath    string
	LogFile   string
	LogLevel  slog.Level
	KeepAwake bool
	AI        AIConfig
}

type AIConfig struct {
	APIKey      string
	AdviceModel string
	VisionModel string
	Timeout     time.Duration
}

// Load reads envFiles (default ".env") if they exist, then the environment.
// Variables already set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		DBPath:    os.Getenv("STUDYPLAN_DB"),
		LogFile:   os.Getenv("STUDYPLAN_LOG_FILE"),
		KeepAwake: true,
		AI: AIConfig{
			APIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			AdviceModel: getEnvOrDefault("STUDYPLAN_ADVICE_MODEL", DefaultAdviceModel),
			VisionModel: getEnvOrDefault("STUDYPLAN_VISION_MODEL", DefaultVisionModel),
			Timeout:     DefaultAITimeout,
		},
	}

	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("default db path: %w", err)
		}
		cfg.DBPath = p
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile(cfg.DBPath)
	}

	if v := os.Getenv("STUDYPLAN_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("STUDYPLAN_LOG_LEVEL: %w", err)
		}
	}
	if v := os.Getenv("STUDYPLAN_KEEP_AWAKE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("STUDYPLAN_KEEP_AWAKE: %w", err)
		}
		cfg.KeepAwake = b
	}
	if v := os.Getenv("STUDYPLAN_AI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STUDYPLAN_AI_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("STUDYPLAN_AI_TIMEOUT must be positive, got %s", v)
		}
		cfg.AI.Timeout = d
	}
	return cfg, nil
}

// DefaultLogFile places the log next to the database.
func DefaultLogFile(dbPath string) string {
	if dbPath == ":memory:" {
		return filepath.Join(os.TempDir(), "studyplan.log")
	}
	return filepath.Join(filepath.Dir(dbPath), "studyplan.log")
}

func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

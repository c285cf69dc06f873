// Package cli is the studyplan command line: the TUI by default, plus
// scriptable subcommands over the same database.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/advisor"
	"github.com/sadopc/studyplan/internal/awake"
	"github.com/sadopc/studyplan/internal/config"
	"github.com/sadopc/studyplan/internal/planner"
	"github.com/sadopc/studyplan/internal/store"
)

type Options struct {
	EnvFiles []string // default ".env"
	Now      func() time.Time

	// NewGenerator builds the model client for advice and image commands.
	// Defaults to a GeminiClient.
	NewGenerator func(ai config.AIConfig, model string) advisor.Generator
}

// env is the state shared by the commands of one invocation.
type env struct {
	opts  Options
	db    string
	cfg   *config.Config
	store *store.Store
	p     *planner.Planner
}

func NewRootCmd(opts Options) *cobra.Command {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewGenerator == nil {
		opts.NewGenerator = geminiGenerator
	}
	e := &env{opts: opts}

	rootCmd := &cobra.Command{
		Use:   "studyplan",
		Short: "Plan study sessions, time them and track exam goals",
		Long: `studyplan keeps a per-day plan of study sessions, times them with a
single start/pause/stop timer and tracks target and actual exam scores.

Run without a subcommand to open the interactive UI.

Configuration is read from .env and the environment:
- STUDYPLAN_DB, STUDYPLAN_LOG_FILE, STUDYPLAN_LOG_LEVEL
- STUDYPLAN_KEEP_AWAKE (default: true)
- GEMINI_API_KEY, STUDYPLAN_ADVICE_MODEL, STUDYPLAN_VISION_MODEL, STUDYPLAN_AI_TIMEOUT`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runTUI()
		},
	}

	rootCmd.PersistentFlags().StringVar(&e.db, "db", "", "Database path (overrides STUDYPLAN_DB)")

	rootCmd.AddCommand(
		newSummaryCmd(e),
		newExportCmd(e),
		newAdviceCmd(e),
		newAnalyzeCmd(e),
		newShareCmd(e),
		newFriendCmd(e),
		newNameCmd(e),
	)
	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCmd(Options{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func geminiGenerator(ai config.AIConfig, model string) advisor.Generator {
	return &advisor.GeminiClient{APIKey: ai.APIKey, Model: model, Timeout: ai.Timeout}
}

func (e *env) loadConfig() error {
	cfg, err := config.Load(e.opts.EnvFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if e.db != "" {
		cfg.DBPath = e.db
		if os.Getenv("STUDYPLAN_LOG_FILE") == "" {
			cfg.LogFile = config.DefaultLogFile(e.db)
		}
	}
	e.cfg = cfg
	return nil
}

func (e *env) logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: e.cfg.LogLevel}))
}

// open loads the database into a planner. Subcommands run without
// keep-awake; only the TUI passes a reconciler.
func (e *env) open(log *slog.Logger, rec *awake.Reconciler) (*planner.Planner, error) {
	s, err := store.New(e.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	snap, err := s.Load()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("load records: %w", err)
	}
	e.store = s
	e.p = planner.New(snap, planner.Options{
		Store:  s,
		Awake:  rec,
		Logger: log,
		Now:    e.opts.Now,
	})
	log.Debug("database opened", "path", e.cfg.DBPath, "entries", len(snap.Entries))
	return e.p, nil
}

// openCLI opens the planner for a non-interactive command logging to stderr.
func (e *env) openCLI(cmd *cobra.Command) (*planner.Planner, error) {
	return e.open(e.logger(cmd.ErrOrStderr()), nil)
}

func (e *env) close() {
	if e.p != nil {
		e.p.Close()
		e.p = nil
	}
	if e.store != nil {
		e.store.Close()
		e.store = nil
	}
}

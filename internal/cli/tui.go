package cli

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/studyplan/internal/awake"
	"github.com/sadopc/studyplan/internal/tui"
)

// runTUI owns the terminal, so logs go to cfg.LogFile.
func (e *env) runTUI() error {
	f, err := tea.LogToFile(e.cfg.LogFile, "studyplan")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	log := e.logger(f)
	slog.SetDefault(log)

	var rec *awake.Reconciler
	if e.cfg.KeepAwake {
		rec = awake.NewReconciler(awake.CommandInhibitor{}, log)
	}

	p, err := e.open(log, rec)
	if err != nil {
		return err
	}
	defer e.close()

	app := tui.NewApp(p, tui.Options{
		Advice:    e.opts.NewGenerator(e.cfg.AI, e.cfg.AI.AdviceModel),
		Vision:    e.opts.NewGenerator(e.cfg.AI, e.cfg.AI.VisionModel),
		AITimeout: e.cfg.AI.Timeout,
		Logger:    log,
		Now:       e.opts.Now,
	})

	log.Info("starting", "db", e.cfg.DBPath, "keep_awake", e.cfg.KeepAwake)
	prog := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	log.Info("exiting")
	return nil
}

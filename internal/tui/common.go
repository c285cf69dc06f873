package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/studyplan/internal/planner"
)

// viewState represents the currently active view.
type viewState int

const (
	viewPlan viewState = iota
	viewGoals
	viewStats
	viewFriends
	viewAdvice
)

var viewNames = []string{"Plan", "Goals", "Stats", "Friends", "Advice"}

// --- Messages ---

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
)

type statusMsg struct {
	text  string
	level statusLevel
}

// tickMsg only triggers a redraw of the live timer.
type tickMsg time.Time

// timerChangedMsg is sent after any start/pause/resume/stop/delete so the
// app can (re)arm the display tick.
type timerChangedMsg struct{}

type exportDoneMsg struct {
	path string
}

type adviceMsg struct {
	title string
	text  string
	err   error
}

// --- Helpers ---

func status(text string, level statusLevel) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, level: level} }
}

// resultCmd reports the outcome of a planner call. Persistence failures
// are warnings: the change was applied in memory.
func resultCmd(err error, okText string) tea.Cmd {
	switch {
	case err == nil && okText == "":
		return nil
	case err == nil:
		return status(okText, statusInfo)
	case errors.Is(err, planner.ErrPersistence):
		return status("Warning: "+err.Error(), statusWarn)
	default:
		return status("Error: "+err.Error(), statusError)
	}
}

func timerChanged() tea.Msg { return timerChangedMsg{} }

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func parseMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("enter a whole number of minutes")
	}
	return n, nil
}

// parseScore parses an optional score; blank means unset.
func parseScore(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("enter a number")
	}
	return &n, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

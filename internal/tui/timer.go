package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyplan/internal/planner"
	"github.com/sadopc/studyplan/internal/study"
	"github.com/sadopc/studyplan/internal/timer"
)

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ticker keeps at most one redraw tick in flight, and only while the
// timer is running.
type ticker struct {
	armed bool
}

// arm starts the tick chain if the timer runs and no tick is pending.
func (t *ticker) arm(running bool) tea.Cmd {
	if !running || t.armed {
		return nil
	}
	t.armed = true
	return tickCmd()
}

// next is called for each tickMsg and reschedules while running.
func (t *ticker) next(running bool) tea.Cmd {
	if !running {
		t.armed = false
		return nil
	}
	t.armed = true
	return tickCmd()
}

func renderTimerPanel(p *planner.Planner, w int) string {
	id, active := p.ActiveID()
	e, ok := p.Entry(id)
	if !active || !ok {
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(w-6).Render("00:00:00"),
			mutedStyle.Render("■  IDLE"),
			mutedStyle.Render("Select an entry and press s to start"),
		)
		return panelStyle.Width(w).Render(content)
	}

	elapsed := formatDuration(p.Elapsed())
	var timeDisplay, indicator string
	if p.TimerState() == timer.Running {
		timeDisplay = timerRunningStyle.Width(w - 6).Render(elapsed)
		indicator = successStyle.Render("●  STUDYING")
	} else {
		timeDisplay = timerPausedStyle.Width(w - 6).Render(elapsed)
		indicator = warningStyle.Render("⏸  PAUSED")
	}

	subject := highlightStyle.Render(e.Subject)
	if e.Content != "" {
		subject += mutedStyle.Render(" / " + e.Content)
	}
	progress := mutedStyle.Render(fmt.Sprintf("actual %s of %s planned",
		study.FormatMinutes(p.LiveMinutes(id)), study.FormatMinutes(e.PlannedMinutes)))

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		subject,
		progress,
	)
	return activePanelStyle.Width(w).Render(content)
}

package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyplan/internal/planner"
	"github.com/sadopc/studyplan/internal/study"
	"github.com/sadopc/studyplan/internal/summary"
	"github.com/sadopc/studyplan/internal/timer"
)

// planModel is the per-day entry list with the study timer on top.
type planModel struct {
	planner *planner.Planner
	now     func() time.Time
	width   int
	height  int

	day    time.Time
	cursor int

	formActive bool
	form       *huh.Form
	editingID  string

	// Form field pointers (survive value copies)
	formSubject *string
	formContent *string
	formPlanned *string
	formActual  *string
	formDone    *bool
}

func newPlanModel(p *planner.Planner, now func() time.Time) planModel {
	subject, content, planned, actual, done := "", "", "", "", false
	return planModel{
		planner:     p,
		now:         now,
		day:         now(),
		formSubject: &subject,
		formContent: &content,
		formPlanned: &planned,
		formActual:  &actual,
		formDone:    &done,
	}
}

func (m *planModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m planModel) entries() []study.Entry {
	return m.planner.EntriesForDate(m.day)
}

func (m planModel) selected() (study.Entry, bool) {
	entries := m.entries()
	if m.cursor < 0 || m.cursor >= len(entries) {
		return study.Entry{}, false
	}
	return entries[m.cursor], true
}

func (m *planModel) clampCursor() {
	n := len(m.entries())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func (m planModel) update(msg tea.Msg) (planModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.entries())-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Left):
		m.day = m.day.AddDate(0, 0, -1)
		m.cursor = 0
	case key.Matches(km, keys.Right):
		m.day = m.day.AddDate(0, 0, 1)
		m.cursor = 0
	case key.Matches(km, keys.Today):
		m.day = m.now()
		m.cursor = 0

	case key.Matches(km, keys.New):
		e, err := m.planner.AddEntry(m.day)
		m.cursor = len(m.entries()) - 1
		var cmd tea.Cmd
		m, cmd = m.showEditForm(e)
		return m, tea.Batch(cmd, resultCmd(err, ""))

	case key.Matches(km, keys.Enter), key.Matches(km, keys.Edit):
		if e, ok := m.selected(); ok {
			return m.showEditForm(e)
		}

	case key.Matches(km, keys.Done):
		if e, ok := m.selected(); ok {
			done := !e.IsDone
			_, err := m.planner.UpdateEntry(e.ID, study.EntryPatch{IsDone: &done})
			return m, resultCmd(err, "")
		}

	case key.Matches(km, keys.Delete):
		if e, ok := m.selected(); ok {
			_, err := m.planner.DeleteEntry(e.ID)
			m.clampCursor()
			return m, tea.Batch(timerChanged, resultCmd(err, "Entry deleted"))
		}

	case key.Matches(km, keys.Start):
		if e, ok := m.selected(); ok {
			if err := m.planner.StartTimer(e.ID); err != nil {
				return m, resultCmd(err, "")
			}
			return m, tea.Batch(timerChanged, status("Timer started: "+e.Subject, statusInfo))
		}

	case key.Matches(km, keys.Pause):
		return m.togglePause()

	case key.Matches(km, keys.Stop):
		id, ok := m.planner.ActiveID()
		if !ok {
			return m, nil
		}
		_, err := m.planner.StopTimer(id)
		return m, tea.Batch(timerChanged, resultCmd(err, "Timer stopped"))
	}
	return m, nil
}

// togglePause pauses or resumes whichever entry holds the timer.
func (m planModel) togglePause() (planModel, tea.Cmd) {
	id, ok := m.planner.ActiveID()
	if !ok {
		return m, nil
	}
	switch m.planner.TimerState() {
	case timer.Running:
		_, err := m.planner.PauseTimer(id)
		return m, tea.Batch(timerChanged, resultCmd(err, "Timer paused"))
	case timer.Paused:
		m.planner.ResumeTimer(id)
		return m, tea.Batch(timerChanged, status("Timer resumed", statusInfo))
	}
	return m, nil
}

func (m planModel) showEditForm(e study.Entry) (planModel, tea.Cmd) {
	*m.formSubject = e.Subject
	*m.formContent = e.Content
	*m.formPlanned = strconv.Itoa(e.PlannedMinutes)
	*m.formActual = strconv.Itoa(e.ActualMinutes)
	*m.formDone = e.IsDone
	m.editingID = e.ID

	subjectOptions := make([]huh.Option[string], len(study.Subjects))
	for i, s := range study.Subjects {
		subjectOptions[i] = huh.NewOption(s, s)
	}
	validMinutes := func(s string) error {
		_, err := parseMinutes(s)
		return err
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Subject").Options(subjectOptions...).Value(m.formSubject),
			huh.NewInput().Title("Content").Placeholder("e.g. 教科書 p.40-52").Value(m.formContent),
			huh.NewInput().Title("Planned (min)").Validate(validMinutes).Value(m.formPlanned),
			huh.NewInput().Title("Actual (min)").Validate(validMinutes).Value(m.formActual),
			huh.NewConfirm().Title("Done?").Value(m.formDone),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m planModel) updateForm(msg tea.Msg) (planModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m, m.saveForm()
	}
	return m, cmd
}

func (m planModel) saveForm() tea.Cmd {
	planned, _ := parseMinutes(*m.formPlanned)
	actual, _ := parseMinutes(*m.formActual)
	subject := *m.formSubject
	content := strings.TrimSpace(*m.formContent)
	done := *m.formDone

	_, err := m.planner.UpdateEntry(m.editingID, study.EntryPatch{
		Subject:        &subject,
		Content:        &content,
		PlannedMinutes: &planned,
		ActualMinutes:  &actual,
		IsDone:         &done,
	})
	return resultCmd(err, "Entry saved")
}

func (m planModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4

	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Edit Entry"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderTimerPanel(m.planner, w),
		m.renderEntries(w),
	)
}

func (m planModel) renderEntries(w int) string {
	entries := m.entries()
	totals := summary.Global(entries)

	dayLabel := m.day.Format("2006-01-02 (Mon)")
	if study.DateStr(m.day) == study.DateStr(m.now()) {
		dayLabel += " today"
	}
	header := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render(dayLabel),
		highlightStyle.Render(fmt.Sprintf("%s / %s", study.FormatMinutes(totals.TotalActual), study.FormatMinutes(totals.TotalPlanned))),
		mutedStyle.Render(fmt.Sprintf("%d/%d done", totals.CompletionCount, totals.TotalTasks)),
	)

	var rows []string
	rows = append(rows, header, "")
	if len(entries) == 0 {
		rows = append(rows, mutedStyle.Render("No plans for this day. Press n to add one."))
	}

	activeID, _ := m.planner.ActiveID()
	for i, e := range entries {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		glyph := mutedStyle.Render("○")
		switch {
		case e.ID == activeID && m.planner.TimerState() == timer.Running:
			glyph = successStyle.Render("●")
		case e.ID == activeID:
			glyph = warningStyle.Render("⏸")
		case e.IsDone:
			glyph = successStyle.Render("✓")
		}

		actual := m.planner.LiveMinutes(e.ID)
		minutes := fmt.Sprintf("%4d/%-4d min", actual, e.PlannedMinutes)
		if e.PlannedMinutes > 0 && actual >= e.PlannedMinutes {
			minutes = successStyle.Render(minutes)
		}

		content := truncate(e.Content, max(10, w-50))
		subject := style.Width(14).Render(truncate(e.Subject, 12))
		if e.IsDone && i != m.cursor {
			content = doneItemStyle.Render(content)
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s  %s", cursor, glyph, subject, minutes, content))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  c: done  d: delete  s: start  space: pause  x: stop  ←/→: day  t: today"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

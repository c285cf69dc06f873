package tui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyplan/internal/advisor"
	"github.com/sadopc/studyplan/internal/export"
	"github.com/sadopc/studyplan/internal/planner"
	"github.com/sadopc/studyplan/internal/timer"
)

type Options struct {
	Advice    advisor.Generator
	Vision    advisor.Generator
	AITimeout time.Duration
	ExportDir string // default: home directory
	Logger    *slog.Logger
	Now       func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	planner *planner.Planner
	opts    Options
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	plan    planModel
	goals   goalsModel
	stats   statsModel
	friends friendsModel
	advice  adviceModel

	ticker ticker
	help   help.Model
	status statusMsg
}

func NewApp(p *planner.Planner, opts Options) App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportDir == "" {
		opts.ExportDir, _ = os.UserHomeDir()
	}

	h := help.New()
	h.ShowAll = false

	return App{
		planner:    p,
		opts:       opts,
		activeView: viewPlan,
		plan:       newPlanModel(p, opts.Now),
		goals:      newGoalsModel(p),
		stats:      newStatsModel(p),
		friends:    newFriendsModel(p),
		advice:     newAdviceModel(p, opts),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.SetWindowTitle("studyplan")
}

func (a App) running() bool {
	return timer.IsRunning(a.planner.TimerState())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.plan.setSize(a.width, contentHeight)
		a.goals.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.friends.setSize(a.width, contentHeight)
		a.advice.setSize(a.width, contentHeight)
		return a, nil

	case tea.FocusMsg:
		a.planner.Visible()
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewPlan), nil
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewGoals), nil
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewStats), nil
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewFriends), nil
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewAdvice), nil
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames))), nil
		}

	case tickMsg:
		return a, a.ticker.next(a.running())

	case timerChangedMsg:
		return a, a.ticker.arm(a.running())

	case statusMsg:
		a.status = msg
		return a, nil

	case exportDoneMsg:
		a.status = statusMsg{text: "Exported to " + msg.path}
		a.opts.Logger.Info("exported entries", "path", msg.path)
		return a, nil

	case adviceMsg:
		var cmd tea.Cmd
		a.advice, cmd = a.advice.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) App {
	a.activeView = v
	if v == viewStats {
		a.stats.refresh()
	}
	return a
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewPlan:
		a.plan, cmd = a.plan.update(msg)
	case viewGoals:
		a.goals, cmd = a.goals.update(msg)
	case viewFriends:
		a.friends, cmd = a.friends.update(msg)
	case viewAdvice:
		a.advice, cmd = a.advice.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPlan:
		return a.plan.formActive
	case viewGoals:
		return a.goals.formActive
	case viewFriends:
		return a.friends.formActive
	case viewAdvice:
		return a.advice.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewPlan:
		content = a.plan.view()
	case viewGoals:
		content = a.goals.view()
	case viewStats:
		content = a.stats.view()
	case viewFriends:
		content = a.friends.view()
	case viewAdvice:
		content = a.advice.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studyplan")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status.text != "" {
		status = statusStyle(a.status.level).Render(" " + a.status.text)
	}

	// Timer indicator in footer
	timerInfo := ""
	if id, ok := a.planner.ActiveID(); ok {
		subject := ""
		if e, ok := a.planner.Entry(id); ok {
			subject = e.Subject + " "
		}
		elapsed := formatDuration(a.planner.Elapsed())
		if a.running() {
			timerInfo = successStyle.Render(" ● " + subject + elapsed)
		} else {
			timerInfo = warningStyle.Render(" ⏸ " + subject + "paused")
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"), "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	entries := a.planner.Entries()
	dateStr := a.opts.Now().Format("2006-01-02")
	path := filepath.Join(a.opts.ExportDir, fmt.Sprintf("studyplan-export-%s.%s", dateStr, format))
	log := a.opts.Logger

	return func() tea.Msg {
		if err := export.Write(format, entries, path); err != nil {
			log.Warn("export failed", "format", format, "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), level: statusError}
		}
		return exportDoneMsg{path: path}
	}
}

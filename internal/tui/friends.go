package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyplan/internal/planner"
	"github.com/sadopc/studyplan/internal/share"
	"github.com/sadopc/studyplan/internal/study"
)

// friendsModel shows the local profile, its share code and the leaderboard.
type friendsModel struct {
	planner *planner.Planner
	width   int
	height  int

	cursor int

	// writeClipboard puts the share code on the system clipboard.
	writeClipboard func(string) error

	formActive bool
	form       *huh.Form
	formType   string // "name", "friend"

	// Form values as pointers (survive value copies)
	formName *string
	formCode *string
}

func newFriendsModel(p *planner.Planner) friendsModel {
	name, code := "", ""
	return friendsModel{
		planner:        p,
		writeClipboard: clipboard.WriteAll,
		formName:       &name,
		formCode:       &code,
	}
}

func (f *friendsModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f friendsModel) update(msg tea.Msg) (friendsModel, tea.Cmd) {
	if f.formActive && f.form != nil {
		return f.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}
	board := f.planner.Leaderboard()
	switch {
	case key.Matches(km, keys.Up):
		if f.cursor > 0 {
			f.cursor--
		}
	case key.Matches(km, keys.Down):
		if f.cursor < len(board)-1 {
			f.cursor++
		}
	case key.Matches(km, keys.Edit):
		return f.showNameForm()
	case key.Matches(km, keys.New), key.Matches(km, keys.Enter):
		return f.showFriendForm()
	case key.Matches(km, keys.Copy):
		return f, f.copyShareCode()
	case key.Matches(km, keys.Delete):
		if f.cursor < len(board) && board[f.cursor].ID != f.planner.SelfID() {
			removed := board[f.cursor]
			_, err := f.planner.RemoveFriend(removed.ID)
			if f.cursor >= len(board)-1 {
				f.cursor = max(0, len(board)-2)
			}
			return f, resultCmd(err, "Removed "+removed.Name)
		}
	}
	return f, nil
}

// copyShareCode puts the unwrapped share code on the clipboard. The code
// drawn in the panel wraps and picks up indentation when selected by hand.
func (f friendsModel) copyShareCode() tea.Cmd {
	code, err := f.planner.ShareCode()
	if err != nil {
		return status("Share code: "+err.Error(), statusError)
	}
	if err := f.writeClipboard(code); err != nil {
		return status("Copy failed: "+err.Error(), statusError)
	}
	return status("Share code copied", statusInfo)
}

func (f friendsModel) showNameForm() (friendsModel, tea.Cmd) {
	*f.formName = f.planner.DisplayName()
	f.formType = "name"

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Display name").Value(f.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	f.formActive = true
	return f, f.form.Init()
}

func (f friendsModel) showFriendForm() (friendsModel, tea.Cmd) {
	*f.formCode = ""
	f.formType = "friend"

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Friend's share code").
				Description("paste the code your friend sent you").
				CharLimit(4096).
				Validate(func(s string) error {
					_, err := share.Decode(s)
					return err
				}).
				Value(f.formCode),
		),
	).WithShowHelp(true).WithShowErrors(true)

	f.formActive = true
	return f, f.form.Init()
}

func (f friendsModel) updateForm(msg tea.Msg) (friendsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.formActive = false
			f.form = nil
			return f, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if ff, ok := form.(*huh.Form); ok {
		f.form = ff
	}

	if f.form.State == huh.StateCompleted {
		f.formActive = false
		f.form = nil
		switch f.formType {
		case "name":
			err := f.planner.SetDisplayName(*f.formName)
			return f, resultCmd(err, "Name saved")
		case "friend":
			fs, err := f.planner.AddFriend(*f.formCode)
			if err != nil && fs.ID == "" {
				return f, resultCmd(err, "")
			}
			return f, resultCmd(err, "Added "+fs.Name)
		}
	}

	return f, cmd
}

func (f friendsModel) view() string {
	w := f.width - 4

	if f.formActive && f.form != nil {
		title := titleStyle.Render("Profile")
		if f.formType == "friend" {
			title = titleStyle.Render("Add Friend")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", f.form.View()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		f.renderProfile(w),
		f.renderLeaderboard(w),
	)
}

func (f friendsModel) renderProfile(w int) string {
	me := f.planner.MyStats()
	code, err := f.planner.ShareCode()
	if err != nil {
		code = errorStyle.Render(err.Error())
	}

	rows := []string{
		titleStyle.Render("Profile"),
		"",
		fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(14).Render("Name"), highlightStyle.Render(me.Name)),
		fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(14).Render("Studied"), study.FormatMinutes(me.TotalMinutes)),
		fmt.Sprintf("  %s %d", lipgloss.NewStyle().Width(14).Render("Todo goals"), me.GoalsMetCount),
		"",
		mutedStyle.Render("  Share code (send this to a friend, y copies it):"),
		secondaryStyle.Width(max(20, w-8)).Render(code),
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (f friendsModel) renderLeaderboard(w int) string {
	board := f.planner.Leaderboard()
	selfID := f.planner.SelfID()

	var rows []string
	rows = append(rows, titleStyle.Render("Leaderboard"), "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-4s %-18s %10s %6s  %s", "#", "Name", "Studied", "Goals", "Updated")))

	for i, fs := range board {
		cursor := "  "
		style := normalItemStyle
		if i == f.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		name := fs.Name
		if fs.ID == selfID {
			name += " (you)"
			if i != f.cursor {
				style = highlightStyle
			}
		}
		rows = append(rows, fmt.Sprintf("%s%-4d %s %10s %6d  %s",
			cursor, i+1, style.Width(18).Render(truncate(name, 16)),
			study.FormatMinutes(fs.TotalMinutes), fs.GoalsMetCount, formatUpdated(fs)))
	}
	if len(board) == 1 {
		rows = append(rows, "", mutedStyle.Render("  No friends yet. Press n and paste a share code."))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: add friend  d: remove  e: edit name  y: copy code"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func formatUpdated(fs study.FriendStats) string {
	if fs.LastUpdated == 0 {
		return "-"
	}
	return time.UnixMilli(fs.LastUpdated).Local().Format("01/02 15:04")
}

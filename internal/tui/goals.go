package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyplan/internal/planner"
	"github.com/sadopc/studyplan/internal/study"
	"github.com/sadopc/studyplan/internal/summary"
)

type goalsModel struct {
	planner *planner.Planner
	width   int
	height  int

	cursor       int
	todoCursor   int
	viewingTodos bool // true = viewing todos of selected subject

	formActive bool
	form       *huh.Form
	formType   string // "scores", "todo"

	// Form field pointers (survive value copies)
	formTarget *string
	formActual *string
	formText   *string
}

func newGoalsModel(p *planner.Planner) goalsModel {
	target, actual, text := "", "", ""
	return goalsModel{
		planner:    p,
		formTarget: &target,
		formActual: &actual,
		formText:   &text,
	}
}

func (g *goalsModel) setSize(w, h int) {
	g.width = w
	g.height = h
}

func (g goalsModel) selected() (study.Goal, bool) {
	goals := g.planner.Goals()
	if g.cursor < 0 || g.cursor >= len(goals) {
		return study.Goal{}, false
	}
	return goals[g.cursor], true
}

func (g goalsModel) update(msg tea.Msg) (goalsModel, tea.Cmd) {
	if g.formActive && g.form != nil {
		return g.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if g.viewingTodos {
			return g.updateTodoView(msg)
		}
		return g.updateGoalList(msg)
	}
	return g, nil
}

func (g goalsModel) updateGoalList(msg tea.KeyMsg) (goalsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if g.cursor > 0 {
			g.cursor--
		}
	case key.Matches(msg, keys.Down):
		if g.cursor < len(g.planner.Goals())-1 {
			g.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if _, ok := g.selected(); ok {
			g.viewingTodos = true
			g.todoCursor = 0
		}
	case key.Matches(msg, keys.Edit):
		if goal, ok := g.selected(); ok {
			return g.showScoresForm(goal)
		}
	}
	return g, nil
}

func (g goalsModel) updateTodoView(msg tea.KeyMsg) (goalsModel, tea.Cmd) {
	goal, ok := g.selected()
	if !ok {
		g.viewingTodos = false
		return g, nil
	}

	switch {
	case key.Matches(msg, keys.Back):
		g.viewingTodos = false
	case key.Matches(msg, keys.Up):
		if g.todoCursor > 0 {
			g.todoCursor--
		}
	case key.Matches(msg, keys.Down):
		if g.todoCursor < len(goal.Todos)-1 {
			g.todoCursor++
		}
	case key.Matches(msg, keys.New):
		return g.showTodoForm()
	case key.Matches(msg, keys.Edit):
		return g.showScoresForm(goal)
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Pause), key.Matches(msg, keys.Done):
		if g.todoCursor < len(goal.Todos) {
			_, err := g.planner.ToggleTodo(goal.Subject, goal.Todos[g.todoCursor].ID)
			return g, resultCmd(err, "")
		}
	case key.Matches(msg, keys.Delete):
		if g.todoCursor < len(goal.Todos) {
			_, err := g.planner.DeleteTodo(goal.Subject, goal.Todos[g.todoCursor].ID)
			if g.todoCursor >= len(goal.Todos)-1 {
				g.todoCursor = max(0, len(goal.Todos)-2)
			}
			return g, resultCmd(err, "")
		}
	}
	return g, nil
}

func (g goalsModel) showScoresForm(goal study.Goal) (goalsModel, tea.Cmd) {
	*g.formTarget = strconv.Itoa(goal.TargetScore)
	*g.formActual = ""
	if goal.ActualScore != nil {
		*g.formActual = strconv.Itoa(*goal.ActualScore)
	}
	g.formType = "scores"

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Target score").Validate(func(s string) error {
				v, err := parseScore(s)
				if err == nil && v == nil {
					return fmt.Errorf("target is required")
				}
				return err
			}).Value(g.formTarget),
			huh.NewInput().Title("Actual score").Description("leave blank until the result is out").
				Validate(func(s string) error {
					_, err := parseScore(s)
					return err
				}).Value(g.formActual),
		).Title(goal.Subject),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g goalsModel) showTodoForm() (goalsModel, tea.Cmd) {
	*g.formText = ""
	g.formType = "todo"

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Todo").Placeholder("e.g. ワーク p.10-20").Value(g.formText),
		),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g goalsModel) updateForm(msg tea.Msg) (goalsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			g.formActive = false
			g.form = nil
			return g, nil
		}
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.formActive = false
		g.form = nil
		goal, ok := g.selected()
		if !ok {
			return g, nil
		}
		switch g.formType {
		case "scores":
			return g, g.saveScores(goal.Subject)
		case "todo":
			_, added, err := g.planner.AddTodo(goal.Subject, *g.formText)
			if added {
				g.todoCursor = len(goal.Todos)
			}
			return g, resultCmd(err, "")
		}
	}

	return g, cmd
}

func (g goalsModel) saveScores(subject string) tea.Cmd {
	var errs []error
	if target, err := parseScore(*g.formTarget); err == nil && target != nil {
		_, err := g.planner.SetTargetScore(subject, *target)
		errs = append(errs, err)
	}
	actual, err := parseScore(*g.formActual)
	if err == nil {
		_, err := g.planner.SetActualScore(subject, actual)
		errs = append(errs, err)
	}
	for _, err := range errs {
		if err != nil {
			return resultCmd(err, "")
		}
	}
	return status("Scores saved for "+subject, statusInfo)
}

func (g goalsModel) view() string {
	w := g.width - 4
	if g.formActive && g.form != nil {
		title := titleStyle.Render("Edit Scores")
		if g.formType == "todo" {
			title = titleStyle.Render("New Todo")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", g.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if g.viewingTodos {
		return g.renderTodoView(w)
	}
	return g.renderGoalList(w)
}

func (g goalsModel) renderGoalList(w int) string {
	goals := g.planner.Goals()
	title := titleStyle.Render("Goals")
	met := mutedStyle.Render(fmt.Sprintf("%d/%d score goals met", summary.ScoreGoalsMet(goals), len(goals)))

	var rows []string
	rows = append(rows, title+"  "+met, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-16s %8s %8s %8s", "Subject", "Target", "Actual", "Todos")))

	for i, goal := range goals {
		cursor := "  "
		style := normalItemStyle
		if i == g.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		actual := mutedStyle.Render(fmt.Sprintf("%8s", "-"))
		if goal.ActualScore != nil {
			text := fmt.Sprintf("%8d", *goal.ActualScore)
			if summary.ScoreGoalMet(goal) {
				actual = successStyle.Render(text)
			} else {
				actual = warningStyle.Render(text)
			}
		}

		done, total := summary.TodoProgress(goal)
		todos := fmt.Sprintf("%8s", fmt.Sprintf("%d/%d", done, total))
		if total > 0 && done == total {
			todos = successStyle.Render(todos)
		}

		rows = append(rows, fmt.Sprintf("%s%s %8d %s %s",
			cursor, style.Width(18).Render(goal.Subject), goal.TargetScore, actual, todos))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: todos  e: edit scores"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (g goalsModel) renderTodoView(w int) string {
	goal, _ := g.selected()
	done, total := summary.TodoProgress(goal)
	title := titleStyle.Render(fmt.Sprintf("%s  Todos %d/%d", goal.Subject, done, total))

	score := fmt.Sprintf("target %d", goal.TargetScore)
	if goal.ActualScore != nil {
		score += fmt.Sprintf("  actual %d", *goal.ActualScore)
	}

	var rows []string
	rows = append(rows, title, mutedStyle.Render(score), "")

	if len(goal.Todos) == 0 {
		rows = append(rows, mutedStyle.Render("No todos. Press n to add one."))
	}
	for i, todo := range goal.Todos {
		cursor := "  "
		style := normalItemStyle
		if i == g.todoCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if todo.IsDone {
			check = successStyle.Render("[x]")
			if i != g.todoCursor {
				style = doneItemStyle
			}
		}
		rows = append(rows, fmt.Sprintf("%s%s %s", cursor, check, style.Render(todo.Text)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new todo  space: toggle  d: delete  e: edit scores  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

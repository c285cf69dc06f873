package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyplan/internal/advisor"
	"github.com/sadopc/studyplan/internal/planner"
)

// adviceModel requests study advice and image explanations from the model.
type adviceModel struct {
	planner *planner.Planner
	advice  advisor.Generator
	vision  advisor.Generator
	timeout time.Duration
	log     *slog.Logger
	width   int
	height  int

	loading bool
	title   string
	text    string
	err     error

	formActive bool
	form       *huh.Form

	formPath   *string
	formPrompt *string
}

func newAdviceModel(p *planner.Planner, opts Options) adviceModel {
	path, prompt := "", advisor.DefaultImagePrompt
	return adviceModel{
		planner:    p,
		advice:     opts.Advice,
		vision:     opts.Vision,
		timeout:    opts.AITimeout,
		log:        opts.Logger,
		formPath:   &path,
		formPrompt: &prompt,
	}
}

func (a *adviceModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

func (a adviceModel) update(msg tea.Msg) (adviceModel, tea.Cmd) {
	if a.formActive && a.form != nil {
		return a.updateForm(msg)
	}

	switch msg := msg.(type) {
	case adviceMsg:
		a.loading = false
		a.title = msg.title
		a.text = msg.text
		a.err = msg.err
		if msg.err != nil {
			a.log.Warn("model request failed", "request", msg.title, "err", msg.err)
		}
		return a, nil

	case tea.KeyMsg:
		if a.loading {
			return a, nil
		}
		switch {
		case key.Matches(msg, keys.Advice), key.Matches(msg, keys.Enter):
			return a.requestAdvice()
		case key.Matches(msg, keys.Image):
			return a.showImageForm()
		}
	}
	return a, nil
}

func (a adviceModel) requestAdvice() (adviceModel, tea.Cmd) {
	if a.advice == nil {
		return a, status("Advice is not configured", statusError)
	}
	a.loading = true
	a.title = "Study advice"
	a.err = nil

	// Snapshot on the update loop; the request runs in a command goroutine.
	entries := a.planner.Entries()
	goals := a.planner.Goals()
	gen, timeout := a.advice, a.timeout
	return a, func() tea.Msg {
		ctx, cancel := aiContext(timeout)
		defer cancel()
		text, err := advisor.Advice(ctx, gen, entries, goals)
		return adviceMsg{title: "Study advice", text: text, err: err}
	}
}

func (a adviceModel) showImageForm() (adviceModel, tea.Cmd) {
	if *a.formPrompt == "" {
		*a.formPrompt = advisor.DefaultImagePrompt
	}

	a.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Image file").Placeholder("~/Pictures/problem.jpg").
				Validate(func(s string) error {
					_, err := os.Stat(expandHome(s))
					return err
				}).
				Value(a.formPath),
			huh.NewText().Title("Question").Value(a.formPrompt),
		),
	).WithShowHelp(true).WithShowErrors(true)

	a.formActive = true
	return a, a.form.Init()
}

func (a adviceModel) updateForm(msg tea.Msg) (adviceModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			a.formActive = false
			a.form = nil
			return a, nil
		}
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	if a.form.State == huh.StateCompleted {
		a.formActive = false
		a.form = nil
		return a.requestImage(expandHome(*a.formPath), *a.formPrompt)
	}
	return a, cmd
}

func (a adviceModel) requestImage(path, prompt string) (adviceModel, tea.Cmd) {
	if a.vision == nil {
		return a, status("Image analysis is not configured", statusError)
	}
	a.loading = true
	a.title = "Image: " + path
	a.err = nil

	gen, timeout, title := a.vision, a.timeout, a.title
	return a, func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return adviceMsg{title: title, err: fmt.Errorf("read image: %w", err)}
		}
		ctx, cancel := aiContext(timeout)
		defer cancel()
		text, err := advisor.AnalyzeImage(ctx, gen, data, "", prompt)
		return adviceMsg{title: title, text: text, err: err}
	}
}

func aiContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return home + string(os.PathSeparator) + rest
		}
	}
	return path
}

func (a adviceModel) view() string {
	w := a.width - 4

	if a.formActive && a.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Ask about an image"), "", a.form.View()),
		)
	}

	var body string
	switch {
	case a.loading:
		body = warningStyle.Render("Thinking…")
	case a.err != nil:
		body = errorStyle.Render("Request failed: " + a.err.Error())
	case a.text != "":
		body = lipgloss.NewStyle().Width(max(20, w-6)).Render(a.text)
	default:
		body = mutedStyle.Render("Press a for advice on your current plan, or i to ask about a photo of a problem.")
	}

	title := titleStyle.Render("AI Coach")
	if a.title != "" {
		title += "  " + mutedStyle.Render(a.title)
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "", body, "",
		mutedStyle.Render("  a: advice  i: image question"),
	))
}

package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyplan/internal/planner"
	"github.com/sadopc/studyplan/internal/study"
	"github.com/sadopc/studyplan/internal/summary"
)

// statsModel shows planned against actual minutes per subject.
type statsModel struct {
	planner *planner.Planner
	width   int
	height  int

	totals     summary.Totals
	rollups    []summary.SubjectRollup
	daily      summary.DailyStats
	scoreMet   int
	todoGoals  int
	goalsCount int

	chart barchart.Model
}

func newStatsModel(p *planner.Planner) statsModel {
	return statsModel{
		planner: p,
		chart:   barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

// refresh recomputes every figure from the planner.
func (s *statsModel) refresh() {
	entries := s.planner.Entries()
	goals := s.planner.Goals()

	s.totals = summary.Global(entries)
	s.rollups = summary.Active(summary.BySubject(entries))
	s.daily, _ = summary.Daily(entries)
	s.scoreMet = summary.ScoreGoalsMet(goals)
	s.todoGoals = summary.CompletedTodoGoals(goals)
	s.goalsCount = len(goals)
	s.buildChart()
}

func (s *statsModel) buildChart() {
	chartWidth := s.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if s.height > 34 {
		chartHeight = 14
	}

	s.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, r := range s.rollups {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if r.TimeGoalMet() {
			style = lipgloss.NewStyle().Foreground(colorSuccess)
		}
		bars = append(bars, barchart.BarData{
			Label: truncate(r.Subject, 4),
			Values: []barchart.BarValue{{
				Name:  r.Subject,
				Value: float64(r.Actual),
				Style: style,
			}},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4

	header := titleStyle.Render("Stats")
	overview := s.renderOverview()
	chartView := s.chart.View()
	table := s.renderTable(w)
	legend := successStyle.Render("■") + mutedStyle.Render(" planned time reached  ") +
		lipgloss.NewStyle().Foreground(colorPrimary).Render("■") + mutedStyle.Render(" in progress")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", overview, "", chartView, legend, "", table,
		),
	)
}

func (s statsModel) renderOverview() string {
	t := s.totals
	completion := 0
	if t.TotalTasks > 0 {
		completion = t.CompletionCount * 100 / t.TotalTasks
	}
	lines := []string{
		fmt.Sprintf("  Studied %s of %s planned   %d/%d tasks done (%d%%)   %d subjects active",
			highlightStyle.Render(study.FormatMinutes(t.TotalActual)), study.FormatMinutes(t.TotalPlanned),
			t.CompletionCount, t.TotalTasks, completion, t.ActiveSubjects),
		fmt.Sprintf("  Per day  mean %s  median %s  best %s  (%d days)",
			study.FormatMinutes(int(s.daily.Mean)), study.FormatMinutes(int(s.daily.Median)), study.FormatMinutes(int(s.daily.Max)), s.daily.Days),
		fmt.Sprintf("  Score goals met %d/%d   todo lists completed %d",
			s.scoreMet, s.goalsCount, s.todoGoals),
	}
	return strings.Join(lines, "\n")
}

func (s statsModel) renderTable(w int) string {
	if len(s.rollups) == 0 {
		return mutedStyle.Render("  No study time recorded yet")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-18s %10s %10s %8s", "Subject", "Planned", "Actual", "Rate")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 50))))

	for _, r := range s.rollups {
		rate := "-"
		if v, ok := r.AchievementRate(); ok {
			rate = fmt.Sprintf("%.0f%%", v)
		}
		line := fmt.Sprintf("%10s %10s %8s", study.FormatMinutes(r.Planned), study.FormatMinutes(r.Actual), rate)
		if r.TimeGoalMet() {
			line = successStyle.Render(line + " ✓")
		}
		rows = append(rows, "  "+lipgloss.NewStyle().Width(19).Render(r.Subject)+line)
	}
	return strings.Join(rows, "\n")
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/studyplan/internal/advisor"
	"github.com/sadopc/studyplan/internal/export"
	"github.com/sadopc/studyplan/internal/study"
	"github.com/sadopc/studyplan/internal/summary"
)

func newSummaryCmd(e *env) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print study totals, per-subject rollups and goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.openCLI(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			entries := p.Entries()
			if date != "" {
				day, err := study.ParseDateStr(date)
				if err != nil {
					return fmt.Errorf("invalid --date (use YYYY-MM-DD): %w", err)
				}
				entries = p.EntriesForDate(day)
			}

			out := cmd.OutOrStdout()
			t := summary.Global(entries)
			fmt.Fprintf(out, "Studied %s of %s planned, %d/%d tasks done, %d subjects active\n",
				study.FormatMinutes(t.TotalActual), study.FormatMinutes(t.TotalPlanned),
				t.CompletionCount, t.TotalTasks, t.ActiveSubjects)

			if daily, err := summary.Daily(entries); err == nil && daily.Days > 0 {
				fmt.Fprintf(out, "Per day: mean %s, median %s, best %s over %d days\n",
					study.FormatMinutes(int(daily.Mean)), study.FormatMinutes(int(daily.Median)),
					study.FormatMinutes(int(daily.Max)), daily.Days)
			}

			if rollups := summary.Active(summary.BySubject(entries)); len(rollups) > 0 {
				tbl := newTable("Subject", "Planned", "Actual", "Rate")
				for _, r := range rollups {
					rate := "-"
					if v, ok := r.AchievementRate(); ok {
						rate = fmt.Sprintf("%.0f%%", v)
					}
					tbl.Row(r.Subject, study.FormatMinutes(r.Planned), study.FormatMinutes(r.Actual), rate)
				}
				fmt.Fprintln(out, tbl.Render())
			}

			goals := p.Goals()
			tbl := newTable("Subject", "Target", "Actual", "Todos")
			for _, g := range goals {
				actual := "-"
				if g.ActualScore != nil {
					actual = strconv.Itoa(*g.ActualScore)
				}
				done, total := summary.TodoProgress(g)
				tbl.Row(g.Subject, strconv.Itoa(g.TargetScore), actual, fmt.Sprintf("%d/%d", done, total))
			}
			fmt.Fprintln(out, tbl.Render())
			fmt.Fprintf(out, "Score goals met: %d/%d\n", summary.ScoreGoalsMet(goals), len(goals))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Only include entries for this day (YYYY-MM-DD)")
	return cmd
}

func newExportCmd(e *env) *cobra.Command {
	var format, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all entries to CSV, JSON or XLSX",
		Long: `Export every entry to a file.

Example: studyplan export --format xlsx --out plan.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.openCLI(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			format = strings.ToLower(format)
			if outPath == "" {
				outPath = fmt.Sprintf("studyplan-export-%s.%s", study.DateStr(e.opts.Now()), format)
			}
			entries := p.Entries()
			if err := export.Write(format, entries, outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: "+strings.Join(export.Formats, "|"))
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default studyplan-export-DATE.FORMAT)")
	return cmd
}

func newAdviceCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "advice",
		Short: "Ask the model for study advice on the current plan and goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.openCLI(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := e.aiContext(cmd.Context())
			defer cancel()

			gen := e.opts.NewGenerator(e.cfg.AI, e.cfg.AI.AdviceModel)
			text, err := advisor.Advice(ctx, gen, p.Entries(), p.Goals())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newAnalyzeCmd(e *env) *cobra.Command {
	var prompt, mimeType string

	cmd := &cobra.Command{
		Use:   "analyze [image]",
		Short: "Ask the model to explain a photographed problem",
		Long: `Send an image and a question to the vision model.

Example: studyplan analyze ~/Pictures/problem.jpg --prompt "この問題の解き方を教えて"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			ctx, cancel := e.aiContext(cmd.Context())
			defer cancel()

			gen := e.opts.NewGenerator(e.cfg.AI, e.cfg.AI.VisionModel)
			text, err := advisor.AnalyzeImage(ctx, gen, data, mimeType, prompt)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "Question about the image (default: explain the problem)")
	cmd.Flags().StringVar(&mimeType, "mime", "", "Image MIME type (default: detected)")
	return cmd
}

func newShareCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Print your share code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.openCLI(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			code, err := p.ShareCode()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}

func newFriendCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "Manage friends on the leaderboard",
	}

	add := &cobra.Command{
		Use:   "add [share-code]",
		Short: "Add or refresh a friend from their share code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.openCLI(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			fs, err := p.AddFriend(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", fs.Name, fs.ID)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove a friend by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.openCLI(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			ok, err := p.RemoveFriend(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no friend with id %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.openCLI(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			now := e.opts.Now()
			tbl := newTable("#", "Name", "ID", "Studied", "Goals", "Updated")
			for i, fs := range p.Leaderboard() {
				name := fs.Name
				if fs.ID == p.SelfID() {
					name += " (you)"
				}
				updated := "-"
				if fs.LastUpdated > 0 {
					updated = humanize.RelTime(time.UnixMilli(fs.LastUpdated), now, "ago", "from now")
				}
				tbl.Row(strconv.Itoa(i+1), name, fs.ID, study.FormatMinutes(fs.TotalMinutes), strconv.Itoa(fs.GoalsMetCount), updated)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
			return nil
		},
	}

	cmd.AddCommand(add, rm, list)
	return cmd
}

func newNameCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "name [new-name]",
		Short: "Show or set your display name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.openCLI(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if len(args) == 1 {
				if err := p.SetDisplayName(args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.DisplayName())
			return nil
		},
	}
}

func (e *env) aiContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, e.cfg.AI.Timeout)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...)
}

// Package summary derives statistics from entry and goal snapshots. Nothing
// here is stored; every function recomputes from its arguments.
package summary

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/sadopc/studyplan/internal/study"
)

// Totals is the global summary across all entries.
type Totals struct {
	TotalPlanned    int
	TotalActual     int
	CompletionCount int
	TotalTasks      int
	ActiveSubjects  int // distinct subjects with actual minutes > 0
}

func Global(entries []study.Entry) Totals {
	var t Totals
	active := make(map[string]struct{})
	for _, e := range entries {
		t.TotalPlanned += e.PlannedMinutes
		t.TotalActual += e.ActualMinutes
		if e.IsDone {
			t.CompletionCount++
		}
		if e.ActualMinutes > 0 {
			active[e.Subject] = struct{}{}
		}
	}
	t.TotalTasks = len(entries)
	t.ActiveSubjects = len(active)
	return t
}

// SubjectRollup sums one subject's entries.
type SubjectRollup struct {
	Subject string
	Planned int
	Actual  int
}

// AchievementRate is actual/planned as a percentage. ok is false when nothing is planned.
func (r SubjectRollup) AchievementRate() (rate float64, ok bool) {
	if r.Planned <= 0 {
		return 0, false
	}
	return float64(r.Actual) / float64(r.Planned) * 100, true
}

// TimeGoalMet reports whether the planned time was fully studied.
func (r SubjectRollup) TimeGoalMet() bool {
	return r.Planned > 0 && r.Actual >= r.Planned
}

// BySubject returns one rollup per subject, in subject-list order. Entries
// whose subject is not in the list are ignored.
func BySubject(entries []study.Entry) []SubjectRollup {
	out := make([]SubjectRollup, len(study.Subjects))
	idx := make(map[string]int, len(study.Subjects))
	for i, s := range study.Subjects {
		out[i].Subject = s
		idx[s] = i
	}
	for _, e := range entries {
		i, ok := idx[e.Subject]
		if !ok {
			continue
		}
		out[i].Planned += e.PlannedMinutes
		out[i].Actual += e.ActualMinutes
	}
	return out
}

// Active keeps rollups with any planned or actual time, most studied first.
func Active(rollups []SubjectRollup) []SubjectRollup {
	var out []SubjectRollup
	for _, r := range rollups {
		if r.Planned > 0 || r.Actual > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Actual > out[j].Actual
	})
	return out
}

// ScoreGoalMet is the highlight signal: a recorded score at or above target.
func ScoreGoalMet(g study.Goal) bool {
	return g.ActualScore != nil && *g.ActualScore >= g.TargetScore
}

// ScoreGoalsMet counts goals for which ScoreGoalMet holds.
func ScoreGoalsMet(goals []study.Goal) int {
	n := 0
	for _, g := range goals {
		if ScoreGoalMet(g) {
			n++
		}
	}
	return n
}

// CompletedTodoGoals counts goals that have todos and all of them done.
func CompletedTodoGoals(goals []study.Goal) int {
	n := 0
	for _, g := range goals {
		if len(g.Todos) == 0 {
			continue
		}
		done := true
		for _, t := range g.Todos {
			if !t.IsDone {
				done = false
				break
			}
		}
		if done {
			n++
		}
	}
	return n
}

// TodoProgress returns done and total todo counts for a goal.
func TodoProgress(g study.Goal) (done, total int) {
	for _, t := range g.Todos {
		if t.IsDone {
			done++
		}
	}
	return done, len(g.Todos)
}

// DailyStats describes actual minutes per calendar day that has entries.
type DailyStats struct {
	Days   int
	Mean   float64
	Median float64
	Max    float64
}

func Daily(entries []study.Entry) (DailyStats, error) {
	perDay := make(map[string]int)
	for _, e := range entries {
		perDay[e.DateStr] += e.ActualMinutes
	}
	if len(perDay) == 0 {
		return DailyStats{}, nil
	}

	data := make(stats.Float64Data, 0, len(perDay))
	for _, m := range perDay {
		data = append(data, float64(m))
	}

	var ds DailyStats
	var err error
	ds.Days = len(data)
	if ds.Mean, err = data.Mean(); err != nil {
		return DailyStats{}, err
	}
	if ds.Median, err = data.Median(); err != nil {
		return DailyStats{}, err
	}
	if ds.Max, err = data.Max(); err != nil {
		return DailyStats{}, err
	}
	return ds, nil
}

// Leaderboard merges me into friends and sorts by total minutes, highest first.
// A friend with my id is replaced by me.
func Leaderboard(friends []study.FriendStats, me study.FriendStats) []study.FriendStats {
	out := make([]study.FriendStats, 0, len(friends)+1)
	for _, f := range friends {
		if f.ID != me.ID {
			out = append(out, f)
		}
	}
	out = append(out, me)
	SortByMinutes(out)
	return out
}

// SortByMinutes orders peers by total minutes, highest first.
func SortByMinutes(peers []study.FriendStats) {
	sort.SliceStable(peers, func(i, j int) bool {
		return peers[i].TotalMinutes > peers[j].TotalMinutes
	})
}

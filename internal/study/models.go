package study

import (
	"fmt"
	"time"
)

// Subjects is the fixed subject list. New entries default to the first one.
var Subjects = []string{
	"現代の国語",
	"言語文化",
	"数学Ⅰα",
	"数学Ⅰβ",
	"数学A",
	"論理表現Ⅰ",
	"ECⅠ",
	"化学基礎",
	"物理基礎",
	"生物基礎",
	"歴史総合",
	"芸術",
	"保健",
	"サイエンス情報Ⅰ",
}

const (
	DefaultPlannedMinutes = 30
	DefaultTargetScore    = 80
	DefaultDisplayName    = "自分"

	dateLayout = "2006-01-02"
)

type Entry struct {
	ID             string `json:"id"`
	DateStr        string `json:"dateStr"`
	Subject        string `json:"subject"`
	Content        string `json:"content"`
	PlannedMinutes int    `json:"plannedMinutes"`
	ActualMinutes  int    `json:"actualMinutes"`
	IsDone         bool   `json:"isDone"`
}

type Todo struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	IsDone bool   `json:"isDone"`
}

type Goal struct {
	Subject     string `json:"subject"`
	TargetScore int    `json:"targetScore"`
	ActualScore *int   `json:"actualScore,omitempty"` // nil until a result is recorded
	Todos       []Todo `json:"todos"`
}

// FriendStats is a peer's shared progress card. LastUpdated is Unix milliseconds.
type FriendStats struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TotalMinutes  int    `json:"totalMinutes"`
	GoalsMetCount int    `json:"goalsMetCount"`
	LastUpdated   int64  `json:"lastUpdated"`
}

// EntryPatch carries the mutable fields of an Entry. Nil fields are left untouched.
type EntryPatch struct {
	Subject        *string
	Content        *string
	PlannedMinutes *int
	ActualMinutes  *int
	IsDone         *bool
}

// DateStr formats t as the YYYY-MM-DD key used by entries, in t's location.
func DateStr(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDateStr parses a YYYY-MM-DD key in the local time zone.
func ParseDateStr(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.Local)
}

// IsSubject reports whether s is one of Subjects.
func IsSubject(s string) bool {
	for _, sub := range Subjects {
		if sub == s {
			return true
		}
	}
	return false
}

// Score returns a pointer to v, for use with Goal.ActualScore.
func Score(v int) *int {
	return &v
}

func clampMinutes(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// FormatMinutes renders minutes as "1h 05m" or "45m".
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

// ClockMinutes renders minutes as H:MM, the form spreadsheets read as a duration.
func ClockMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%d:%02d", mins/60, mins%60)
}

package study

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newEntryStore(t *testing.T) *EntryStore {
	t.Helper()
	s := NewEntryStore(nil)
	s.newID = seqIDs("e")
	return s
}

func intp(v int) *int { return &v }
func strp(v string) *string { return &v }
func boolp(v bool) *bool { return &v }

// ============================================================
// Entries
// ============================================================

func TestCreateEntryDefaults(t *testing.T) {
	s := newEntryStore(t)
	day := time.Date(2025, 11, 27, 21, 30, 0, 0, time.Local)

	e := s.Create(day)
	assert.Equal(t, "e-1", e.ID)
	assert.Equal(t, "2025-11-27", e.DateStr)
	assert.Equal(t, Subjects[0], e.Subject)
	assert.Equal(t, 30, e.PlannedMinutes)
	assert.Zero(t, e.ActualMinutes)
	assert.False(t, e.IsDone)
	assert.Empty(t, e.Content)
	assert.Equal(t, 1, s.Len())
}

func TestCreateEntryUniqueIDs(t *testing.T) {
	s := NewEntryStore(nil)
	a := s.Create(time.Now())
	b := s.Create(time.Now())
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEmpty(t, a.ID)
}

func TestUpdateEntryMergesFields(t *testing.T) {
	s := newEntryStore(t)
	e := s.Create(time.Now())

	ok := s.Update(e.ID, EntryPatch{
		Subject:        strp("数学A"),
		Content:        strp("chapter 3"),
		PlannedMinutes: intp(45),
		IsDone:         boolp(true),
	})
	require.True(t, ok)

	got, _ := s.Get(e.ID)
	assert.Equal(t, "数学A", got.Subject)
	assert.Equal(t, "chapter 3", got.Content)
	assert.Equal(t, 45, got.PlannedMinutes)
	assert.Zero(t, got.ActualMinutes, "untouched field should keep its value")
	assert.True(t, got.IsDone)
	assert.Equal(t, e.DateStr, got.DateStr)
}

func TestUpdateEntryClampsNegativeMinutes(t *testing.T) {
	s := newEntryStore(t)
	e := s.Create(time.Now())

	s.Update(e.ID, EntryPatch{PlannedMinutes: intp(-10), ActualMinutes: intp(-1)})
	got, _ := s.Get(e.ID)
	assert.Zero(t, got.PlannedMinutes)
	assert.Zero(t, got.ActualMinutes)
}

func TestUpdateEntryAllowsLargeValues(t *testing.T) {
	s := newEntryStore(t)
	e := s.Create(time.Now())

	s.Update(e.ID, EntryPatch{ActualMinutes: intp(100000)})
	got, _ := s.Get(e.ID)
	assert.Equal(t, 100000, got.ActualMinutes)
}

func TestUpdateEntryIgnoresUnknownSubject(t *testing.T) {
	s := newEntryStore(t)
	e := s.Create(time.Now())

	s.Update(e.ID, EntryPatch{Subject: strp("astrology")})
	got, _ := s.Get(e.ID)
	assert.Equal(t, Subjects[0], got.Subject)
}

func TestUpdateEntryMissingID(t *testing.T) {
	s := newEntryStore(t)
	s.Create(time.Now())
	before := s.All()

	assert.False(t, s.Update("nope", EntryPatch{Content: strp("x")}))
	assert.Equal(t, before, s.All())
}

func TestDeleteEntry(t *testing.T) {
	s := newEntryStore(t)
	a := s.Create(time.Now())
	b := s.Create(time.Now())

	require.True(t, s.Delete(a.ID))
	assert.False(t, s.Delete(a.ID))

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestAddActualMinutes(t *testing.T) {
	s := newEntryStore(t)
	e := s.Create(time.Now())

	assert.True(t, s.AddActualMinutes(e.ID, 12))
	assert.True(t, s.AddActualMinutes(e.ID, 3))
	assert.False(t, s.AddActualMinutes("gone", 5))

	got, _ := s.Get(e.ID)
	assert.Equal(t, 15, got.ActualMinutes)
}

func TestAllReturnsCopy(t *testing.T) {
	s := newEntryStore(t)
	e := s.Create(time.Now())

	all := s.All()
	all[0].Content = "mutated"

	got, _ := s.Get(e.ID)
	assert.Empty(t, got.Content)
}

func TestEntryQueries(t *testing.T) {
	s := newEntryStore(t)
	d1 := time.Date(2025, 12, 1, 9, 0, 0, 0, time.Local)
	d2 := time.Date(2025, 12, 2, 9, 0, 0, 0, time.Local)

	a := s.Create(d1)
	b := s.Create(d1)
	c := s.Create(d2)
	s.Update(a.ID, EntryPatch{PlannedMinutes: intp(60), ActualMinutes: intp(50), IsDone: boolp(true)})
	s.Update(b.ID, EntryPatch{PlannedMinutes: intp(20), ActualMinutes: intp(25)})
	s.Update(c.ID, EntryPatch{PlannedMinutes: intp(10), ActualMinutes: intp(0), IsDone: boolp(true)})

	assert.Len(t, s.ForDate("2025-12-01"), 2)
	assert.Len(t, s.ForDate("2025-12-02"), 1)
	assert.Empty(t, s.ForDate("2025-12-03"))

	assert.Equal(t, Totals{Planned: 80, Actual: 75}, s.TotalsForDate("2025-12-01"))
	assert.Equal(t, Totals{Planned: 90, Actual: 75}, s.Totals())
	assert.Equal(t, 2, s.CompletedCount())
}

func TestNewEntryStoreClampsLoadedData(t *testing.T) {
	s := NewEntryStore([]Entry{{ID: "x", PlannedMinutes: -5, ActualMinutes: -7}})
	got, ok := s.Get("x")
	require.True(t, ok)
	assert.Zero(t, got.PlannedMinutes)
	assert.Zero(t, got.ActualMinutes)
}

func TestDateStrRoundTrip(t *testing.T) {
	d, err := ParseDateStr("2025-12-04")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-04", DateStr(d))

	_, err = ParseDateStr("12/04")
	assert.Error(t, err)
}

// ============================================================
// Goals
// ============================================================

func newGoalStore(t *testing.T) *GoalStore {
	t.Helper()
	s := NewGoalStore(SeedGoals())
	s.newID = seqIDs("t")
	return s
}

func TestSeedGoals(t *testing.T) {
	goals := SeedGoals()
	require.Len(t, goals, len(Subjects))
	for i, g := range goals {
		assert.Equal(t, Subjects[i], g.Subject)
		assert.Equal(t, 80, g.TargetScore)
		assert.Nil(t, g.ActualScore)
		assert.NotNil(t, g.Todos)
		assert.Empty(t, g.Todos)
	}
}

func TestSetScores(t *testing.T) {
	s := newGoalStore(t)
	sub := Subjects[2]

	require.True(t, s.SetTargetScore(sub, 90))
	require.True(t, s.SetActualScore(sub, Score(72)))

	g, ok := s.Get(sub)
	require.True(t, ok)
	assert.Equal(t, 90, g.TargetScore)
	require.NotNil(t, g.ActualScore)
	assert.Equal(t, 72, *g.ActualScore)

	require.True(t, s.SetActualScore(sub, nil))
	g, _ = s.Get(sub)
	assert.Nil(t, g.ActualScore)
}

func TestUnknownSubjectIsNoop(t *testing.T) {
	s := newGoalStore(t)
	before := s.All()

	assert.False(t, s.SetTargetScore("music", 10))
	assert.False(t, s.SetActualScore("music", Score(10)))
	_, ok := s.AddTodo("music", "practice")
	assert.False(t, ok)
	assert.False(t, s.ToggleTodo("music", "t-1"))
	assert.False(t, s.DeleteTodo("music", "t-1"))

	assert.Equal(t, before, s.All())
}

func TestTodoLifecycle(t *testing.T) {
	s := newGoalStore(t)
	sub := Subjects[0]

	first, ok := s.AddTodo(sub, "read chapter 1")
	require.True(t, ok)
	second, ok := s.AddTodo(sub, "past paper")
	require.True(t, ok)

	g, _ := s.Get(sub)
	require.Len(t, g.Todos, 2)
	assert.Equal(t, "read chapter 1", g.Todos[0].Text)
	assert.Equal(t, "past paper", g.Todos[1].Text, "todos append in insertion order")
	assert.False(t, g.Todos[0].IsDone)

	require.True(t, s.ToggleTodo(sub, first.ID))
	g, _ = s.Get(sub)
	assert.True(t, g.Todos[0].IsDone)

	require.True(t, s.ToggleTodo(sub, first.ID))
	g, _ = s.Get(sub)
	assert.False(t, g.Todos[0].IsDone)

	require.True(t, s.DeleteTodo(sub, first.ID))
	assert.False(t, s.DeleteTodo(sub, first.ID))
	g, _ = s.Get(sub)
	require.Len(t, g.Todos, 1)
	assert.Equal(t, second.ID, g.Todos[0].ID)
}

func TestAddTodoIgnoresBlank(t *testing.T) {
	s := newGoalStore(t)
	_, ok := s.AddTodo(Subjects[0], "   \t")
	assert.False(t, ok)

	g, _ := s.Get(Subjects[0])
	assert.Empty(t, g.Todos)
}

func TestGoalCopiesAreIndependent(t *testing.T) {
	s := newGoalStore(t)
	sub := Subjects[0]
	s.SetActualScore(sub, Score(50))
	s.AddTodo(sub, "x")

	g, _ := s.Get(sub)
	*g.ActualScore = 99
	g.Todos[0].Text = "changed"

	again, _ := s.Get(sub)
	assert.Equal(t, 50, *again.ActualScore)
	assert.Equal(t, "x", again.Todos[0].Text)
}

func TestIsSubject(t *testing.T) {
	assert.True(t, IsSubject("保健"))
	assert.False(t, IsSubject(""))
	assert.False(t, IsSubject("Physics"))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "1h 00m", FormatMinutes(60))
	assert.Equal(t, "1h 05m", FormatMinutes(65))
	assert.Equal(t, "10h 15m", FormatMinutes(615))
	assert.Equal(t, "0m", FormatMinutes(-3))
}

func TestClockMinutes(t *testing.T) {
	tests := []struct {
		mins int
		want string
	}{
		{0, "0:00"},
		{1, "0:01"},
		{60, "1:00"},
		{135, "2:15"},
		{1500, "25:00"},
		{-5, "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClockMinutes(tt.mins), "ClockMinutes(%d)", tt.mins)
	}
}

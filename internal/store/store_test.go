package store

import (
	"path/filepath"
	"testing"

	"github.com/sadopc/studyplan/internal/study"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "studyplan.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveDisplayName("Ren"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration is not re-run destructively.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	snap, err := s2.Load()
	if err != nil {
		t.Fatal(err)
	}
	if snap.DisplayName != "Ren" {
		t.Fatalf("expected persisted name, got %q", snap.DisplayName)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "studyplan.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)
	var timeout int
	s.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout)
	if timeout != 5000 {
		t.Fatalf("expected busy_timeout=5000, got %d", timeout)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Records
// ============================================================

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)
	v, ok, err := s.Get("nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok || v != "" {
		t.Fatalf("expected absent key, got %q %v", v, ok)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put("k", "one"); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("k", "two"); err != nil {
		t.Fatal(err)
	}
	v, ok, _ := s.Get("k")
	if !ok || v != "two" {
		t.Fatalf("expected two, got %q", v)
	}

	var n int
	s.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n)
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

// ============================================================
// Load / save
// ============================================================

func TestLoadFirstRunSeedsGoals(t *testing.T) {
	s := newTestStore(t)
	snap, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !snap.GoalsSeeded {
		t.Fatal("expected goals to be seeded on first run")
	}
	if len(snap.Goals) != len(study.Subjects) {
		t.Fatalf("expected %d goals, got %d", len(study.Subjects), len(snap.Goals))
	}
	for i, g := range snap.Goals {
		if g.Subject != study.Subjects[i] {
			t.Fatalf("goal %d: subject %q", i, g.Subject)
		}
		if g.TargetScore != 80 {
			t.Fatalf("goal %d: target %d", i, g.TargetScore)
		}
		if g.ActualScore != nil {
			t.Fatalf("goal %d: actual score should be unset", i)
		}
		if len(g.Todos) != 0 {
			t.Fatalf("goal %d: todos should be empty", i)
		}
	}
	if snap.DisplayName != study.DefaultDisplayName {
		t.Fatalf("expected default name, got %q", snap.DisplayName)
	}
	if len(snap.Entries) != 0 || len(snap.Friends) != 0 {
		t.Fatal("expected empty entries and friends")
	}
	if snap.SelfID != "" {
		t.Fatalf("expected no self id before one is saved, got %q", snap.SelfID)
	}
}

func TestSelfIDSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studyplan.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSelfID("a1b2"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	snap, err := s2.Load()
	if err != nil {
		t.Fatal(err)
	}
	if snap.SelfID != "a1b2" {
		t.Fatalf("expected stored self id, got %q", snap.SelfID)
	}
}

func TestSaveAndLoadCollections(t *testing.T) {
	s := newTestStore(t)

	entries := []study.Entry{
		{ID: "e1", DateStr: "2025-12-01", Subject: study.Subjects[1], Content: "漢文", PlannedMinutes: 30, ActualMinutes: 42, IsDone: true},
		{ID: "e2", DateStr: "2025-12-02", Subject: study.Subjects[0], PlannedMinutes: 15},
	}
	goals := study.SeedGoals()
	goals[0].ActualScore = study.Score(91)
	goals[0].Todos = []study.Todo{{ID: "t1", Text: "review", IsDone: true}}
	friends := []study.FriendStats{{ID: "f1", Name: "Aki", TotalMinutes: 10, LastUpdated: 1}}

	if err := s.SaveEntries(entries); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGoals(goals); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveDisplayName("Ren"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveFriends(friends); err != nil {
		t.Fatal(err)
	}

	snap, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if snap.GoalsSeeded {
		t.Fatal("stored goals should not be re-seeded")
	}
	if len(snap.Entries) != 2 || snap.Entries[0] != entries[0] || snap.Entries[1] != entries[1] {
		t.Fatalf("entries round trip mismatch: %+v", snap.Entries)
	}
	if snap.Goals[0].ActualScore == nil || *snap.Goals[0].ActualScore != 91 {
		t.Fatal("actual score lost")
	}
	if snap.Goals[1].ActualScore != nil {
		t.Fatal("unset actual score should stay unset")
	}
	if len(snap.Goals[0].Todos) != 1 || !snap.Goals[0].Todos[0].IsDone {
		t.Fatalf("todos mismatch: %+v", snap.Goals[0].Todos)
	}
	if snap.DisplayName != "Ren" {
		t.Fatalf("name mismatch: %q", snap.DisplayName)
	}
	if len(snap.Friends) != 1 || snap.Friends[0] != friends[0] {
		t.Fatalf("friends mismatch: %+v", snap.Friends)
	}
}

func TestSaveIsPerCollection(t *testing.T) {
	s := newTestStore(t)
	s.SaveEntries([]study.Entry{{ID: "e1"}})

	if err := s.SaveFriends(nil); err != nil {
		t.Fatal(err)
	}
	snap, _ := s.Load()
	if len(snap.Entries) != 1 {
		t.Fatal("writing friends must not touch entries")
	}
	raw, ok, _ := s.Get(KeyFriends)
	if !ok || raw != "[]" {
		t.Fatalf("nil friends should be stored as [], got %q", raw)
	}
}

func TestEntriesJSONLayout(t *testing.T) {
	s := newTestStore(t)
	s.SaveEntries([]study.Entry{{ID: "e1", DateStr: "2025-12-04", Subject: "保健", PlannedMinutes: 30}})
	raw, _, _ := s.Get(KeyEntries)
	want := `[{"id":"e1","dateStr":"2025-12-04","subject":"保健","content":"","plannedMinutes":30,"actualMinutes":0,"isDone":false}]`
	if raw != want {
		t.Fatalf("unexpected layout:\n got %s\nwant %s", raw, want)
	}
}

func TestLoadCorruptRecord(t *testing.T) {
	s := newTestStore(t)
	s.Put(KeyEntries, "{not json")
	if _, err := s.Load(); err == nil {
		t.Fatal("expected decode error for corrupt record")
	}
}

func TestSaveAfterCloseFails(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	if err := s.SaveEntries(nil); err == nil {
		t.Fatal("expected error writing to a closed store")
	}
}

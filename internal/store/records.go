package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/studyplan/internal/study"
)

// Record keys. Each names one independently written collection.
const (
	KeyEntries     = "study-planner-data-v2"
	KeyGoals       = "study-planner-goals"
	KeyDisplayName = "study-planner-username"
	KeyFriends     = "study-planner-friends"
	KeySelfID      = "study-planner-self-id"
)

// Get returns the raw value stored under key. ok is false when the key is absent.
func (s *Store) Get(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get record %q: %w", key, err)
	}
	return value, true, nil
}

// Put overwrites the value stored under key.
func (s *Store) Put(key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now,
	)
	if err != nil {
		return fmt.Errorf("put record %q: %w", key, err)
	}
	return nil
}

// Snapshot is everything loaded at process start.
type Snapshot struct {
	Entries     []study.Entry
	Goals       []study.Goal
	DisplayName string
	Friends     []study.FriendStats
	SelfID      string // empty until one has been saved

	// GoalsSeeded is true when no goals were stored and defaults were built.
	GoalsSeeded bool
}

// Load reads every record. Missing goals are seeded with one goal
// per subject; a missing display name falls back to the default.
func (s *Store) Load() (Snapshot, error) {
	var snap Snapshot

	if _, err := s.getJSON(KeyEntries, &snap.Entries); err != nil {
		return Snapshot{}, err
	}

	ok, err := s.getJSON(KeyGoals, &snap.Goals)
	if err != nil {
		return Snapshot{}, err
	}
	if !ok {
		snap.Goals = study.SeedGoals()
		snap.GoalsSeeded = true
	}

	name, ok, err := s.Get(KeyDisplayName)
	if err != nil {
		return Snapshot{}, err
	}
	if !ok {
		name = study.DefaultDisplayName
	}
	snap.DisplayName = name

	if _, err := s.getJSON(KeyFriends, &snap.Friends); err != nil {
		return Snapshot{}, err
	}

	id, _, err := s.Get(KeySelfID)
	if err != nil {
		return Snapshot{}, err
	}
	snap.SelfID = id
	return snap, nil
}

func (s *Store) SaveEntries(entries []study.Entry) error {
	if entries == nil {
		entries = []study.Entry{}
	}
	return s.putJSON(KeyEntries, entries)
}

func (s *Store) SaveGoals(goals []study.Goal) error {
	if goals == nil {
		goals = []study.Goal{}
	}
	return s.putJSON(KeyGoals, goals)
}

func (s *Store) SaveDisplayName(name string) error {
	return s.Put(KeyDisplayName, name)
}

func (s *Store) SaveFriends(friends []study.FriendStats) error {
	if friends == nil {
		friends = []study.FriendStats{}
	}
	return s.putJSON(KeyFriends, friends)
}

func (s *Store) SaveSelfID(id string) error {
	return s.Put(KeySelfID, id)
}

func (s *Store) getJSON(key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode record %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	return s.Put(key, string(data))
}

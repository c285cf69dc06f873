package study

import (
	"time"

	"github.com/google/uuid"
)

// EntryStore owns the study entries, in creation order.
type EntryStore struct {
	entries []Entry
	newID   func() string
}

func NewEntryStore(entries []Entry) *EntryStore {
	s := &EntryStore{newID: uuid.NewString}
	for _, e := range entries {
		e.PlannedMinutes = clampMinutes(e.PlannedMinutes)
		e.ActualMinutes = clampMinutes(e.ActualMinutes)
		s.entries = append(s.entries, e)
	}
	return s
}

// Create appends a new entry for the calendar day of date.
func (s *EntryStore) Create(date time.Time) Entry {
	e := Entry{
		ID:             s.newID(),
		DateStr:        DateStr(date),
		Subject:        Subjects[0],
		PlannedMinutes: DefaultPlannedMinutes,
	}
	s.entries = append(s.entries, e)
	return e
}

// Update merges p into the entry with the given id. It reports whether the entry exists.
func (s *EntryStore) Update(id string, p EntryPatch) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	e := &s.entries[i]
	if p.Subject != nil && IsSubject(*p.Subject) {
		e.Subject = *p.Subject
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.PlannedMinutes != nil {
		e.PlannedMinutes = clampMinutes(*p.PlannedMinutes)
	}
	if p.ActualMinutes != nil {
		e.ActualMinutes = clampMinutes(*p.ActualMinutes)
	}
	if p.IsDone != nil {
		e.IsDone = *p.IsDone
	}
	return true
}

func (s *EntryStore) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true
}

// AddActualMinutes commits n timer minutes into the entry.
func (s *EntryStore) AddActualMinutes(id string, n int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.entries[i].ActualMinutes = clampMinutes(s.entries[i].ActualMinutes + n)
	return true
}

func (s *EntryStore) Get(id string) (Entry, bool) {
	i := s.index(id)
	if i < 0 {
		return Entry{}, false
	}
	return s.entries[i], true
}

// All returns a copy of every entry.
func (s *EntryStore) All() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *EntryStore) Len() int { return len(s.entries) }

func (s *EntryStore) ForDate(dateStr string) []Entry {
	var out []Entry
	for _, e := range s.entries {
		if e.DateStr == dateStr {
			out = append(out, e)
		}
	}
	return out
}

// Totals holds planned and actual minute sums.
type Totals struct {
	Planned int
	Actual  int
}

func (s *EntryStore) Totals() Totals {
	return sumMinutes(s.entries)
}

func (s *EntryStore) TotalsForDate(dateStr string) Totals {
	return sumMinutes(s.ForDate(dateStr))
}

func (s *EntryStore) CompletedCount() int {
	n := 0
	for _, e := range s.entries {
		if e.IsDone {
			n++
		}
	}
	return n
}

func (s *EntryStore) index(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func sumMinutes(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		t.Planned += e.PlannedMinutes
		t.Actual += e.ActualMinutes
	}
	return t
}

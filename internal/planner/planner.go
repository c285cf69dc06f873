// Package planner ties the entry and goal stores, the study timer, the
// peer list and persistence together. All methods are meant to be called
// from a single goroutine.
package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/studyplan/internal/awake"
	"github.com/sadopc/studyplan/internal/share"
	"github.com/sadopc/studyplan/internal/store"
	"github.com/sadopc/studyplan/internal/study"
	"github.com/sadopc/studyplan/internal/summary"
	"github.com/sadopc/studyplan/internal/timer"
)

// ErrPersistence wraps a failed durable write. The in-memory change it
// belongs to has already been applied.
var ErrPersistence = errors.New("changes not saved")

// Persister writes whole collections. *store.Store implements it.
type Persister interface {
	SaveEntries([]study.Entry) error
	SaveGoals([]study.Goal) error
	SaveDisplayName(string) error
	SaveFriends([]study.FriendStats) error
	SaveSelfID(string) error
}

type Options struct {
	Store  Persister         // nil keeps everything in memory
	Awake  *awake.Reconciler // nil disables keep-awake
	Logger *slog.Logger
	Now    func() time.Time
	SelfID string // overrides the stored id
}

type Planner struct {
	entries *study.EntryStore
	goals   *study.GoalStore
	timer   *timer.Timer

	displayName string
	friends     []study.FriendStats
	selfID      string

	store Persister
	awake *awake.Reconciler
	log   *slog.Logger
	now   func() time.Time
}

// New builds a planner from a loaded snapshot. Seeded goals and a newly
// generated self id are written back so the next start finds them.
func New(snap store.Snapshot, opts Options) *Planner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	newSelf := false
	if opts.SelfID == "" {
		opts.SelfID = snap.SelfID
	}
	if opts.SelfID == "" {
		opts.SelfID = uuid.NewString()
		newSelf = true
	}
	name := snap.DisplayName
	if name == "" {
		name = study.DefaultDisplayName
	}
	p := &Planner{
		entries:     study.NewEntryStore(snap.Entries),
		goals:       study.NewGoalStore(snap.Goals),
		timer:       timer.New(opts.Now),
		displayName: name,
		friends:     append([]study.FriendStats(nil), snap.Friends...),
		selfID:      opts.SelfID,
		store:       opts.Store,
		awake:       opts.Awake,
		log:         opts.Logger,
		now:         opts.Now,
	}
	if snap.GoalsSeeded {
		p.saveGoals()
	}
	if newSelf && p.store != nil {
		p.persistErr(store.KeySelfID, p.store.SaveSelfID(p.selfID))
	}
	return p
}

// ============================================================
// Entries
// ============================================================

// AddEntry creates an entry for the calendar day of date.
func (p *Planner) AddEntry(date time.Time) (study.Entry, error) {
	e := p.entries.Create(date)
	return e, p.saveEntries()
}

// UpdateEntry applies patch to an entry. Unknown ids are ignored.
func (p *Planner) UpdateEntry(id string, patch study.EntryPatch) (bool, error) {
	if !p.entries.Update(id, patch) {
		return false, nil
	}
	return true, p.saveEntries()
}

// DeleteEntry removes an entry. A timer attached to it is discarded first,
// so no minutes are credited to a missing entry.
func (p *Planner) DeleteEntry(id string) (bool, error) {
	if active, ok := p.timer.ActiveID(); ok && active == id {
		p.timer.Reset()
		p.syncAwake()
		p.log.Debug("timer discarded", "entry", id)
	}
	if !p.entries.Delete(id) {
		return false, nil
	}
	return true, p.saveEntries()
}

func (p *Planner) Entry(id string) (study.Entry, bool) { return p.entries.Get(id) }
func (p *Planner) Entries() []study.Entry             { return p.entries.All() }

func (p *Planner) EntriesForDate(date time.Time) []study.Entry {
	return p.entries.ForDate(study.DateStr(date))
}

// ============================================================
// Timer
// ============================================================

// StartTimer attaches the timer to id. It fails with timer.ErrTimerBusy
// while any timer is running or paused; an unknown id is a no-op.
func (p *Planner) StartTimer(id string) error {
	if _, busy := p.timer.ActiveID(); busy {
		return timer.ErrTimerBusy
	}
	if _, ok := p.entries.Get(id); !ok {
		return nil
	}
	if err := p.timer.Start(id); err != nil {
		return err
	}
	p.syncAwake()
	p.log.Debug("timer started", "entry", id)
	return nil
}

// PauseTimer credits the open window to id and keeps the timer attached.
func (p *Planner) PauseTimer(id string) (bool, error) {
	minutes, ok := p.timer.Pause(id)
	if !ok {
		return false, nil
	}
	p.syncAwake()
	p.log.Debug("timer paused", "entry", id, "minutes", minutes)
	return true, p.commit(id, minutes)
}

func (p *Planner) ResumeTimer(id string) bool {
	if !p.timer.Resume(id) {
		return false
	}
	p.syncAwake()
	p.log.Debug("timer resumed", "entry", id)
	return true
}

// StopTimer credits any open window to id and detaches the timer.
func (p *Planner) StopTimer(id string) (bool, error) {
	minutes, ok := p.timer.Stop(id)
	if !ok {
		return false, nil
	}
	p.syncAwake()
	p.log.Debug("timer stopped", "entry", id, "minutes", minutes)
	return true, p.commit(id, minutes)
}

func (p *Planner) TimerState() timer.State { return p.timer.State() }

func (p *Planner) ActiveID() (string, bool) { return p.timer.ActiveID() }

// Elapsed is the length of the open timer window.
func (p *Planner) Elapsed() time.Duration { return p.timer.Elapsed() }

// LiveMinutes is the actual minutes of id as displayed, including the whole
// minutes of a running window that has not been committed yet.
func (p *Planner) LiveMinutes(id string) int {
	e, ok := p.entries.Get(id)
	if !ok {
		return 0
	}
	if active, ok := p.timer.ActiveID(); !ok || active != id {
		return e.ActualMinutes
	}
	return p.timer.LiveMinutes(e.ActualMinutes)
}

// Visible forwards a visibility-restore signal to the keep-awake reconciler.
func (p *Planner) Visible() {
	if p.awake != nil {
		p.awake.Visible()
	}
}

// Close releases the keep-awake lock. Uncommitted timer time is dropped.
func (p *Planner) Close() {
	if p.awake != nil {
		p.awake.Close()
	}
}

func (p *Planner) commit(id string, minutes int) error {
	if minutes == 0 {
		return nil
	}
	if !p.entries.AddActualMinutes(id, minutes) {
		return nil
	}
	return p.saveEntries()
}

func (p *Planner) syncAwake() {
	if p.awake != nil {
		p.awake.Sync(timer.IsRunning(p.timer.State()))
	}
}

// ============================================================
// Goals
// ============================================================

func (p *Planner) SetTargetScore(subject string, score int) (bool, error) {
	if !p.goals.SetTargetScore(subject, score) {
		return false, nil
	}
	return true, p.saveGoals()
}

// SetActualScore records a result; nil clears it.
func (p *Planner) SetActualScore(subject string, score *int) (bool, error) {
	if !p.goals.SetActualScore(subject, score) {
		return false, nil
	}
	return true, p.saveGoals()
}

func (p *Planner) AddTodo(subject, text string) (study.Todo, bool, error) {
	todo, ok := p.goals.AddTodo(subject, text)
	if !ok {
		return study.Todo{}, false, nil
	}
	return todo, true, p.saveGoals()
}

func (p *Planner) ToggleTodo(subject, todoID string) (bool, error) {
	if !p.goals.ToggleTodo(subject, todoID) {
		return false, nil
	}
	return true, p.saveGoals()
}

func (p *Planner) DeleteTodo(subject, todoID string) (bool, error) {
	if !p.goals.DeleteTodo(subject, todoID) {
		return false, nil
	}
	return true, p.saveGoals()
}

func (p *Planner) Goal(subject string) (study.Goal, bool) { return p.goals.Get(subject) }
func (p *Planner) Goals() []study.Goal                    { return p.goals.All() }

// ============================================================
// Profile and peers
// ============================================================

func (p *Planner) DisplayName() string { return p.displayName }
func (p *Planner) SelfID() string      { return p.selfID }

// SetDisplayName renames the local user. A blank name restores the default.
func (p *Planner) SetDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = study.DefaultDisplayName
	}
	p.displayName = name
	if p.store == nil {
		return nil
	}
	return p.persistErr(store.KeyDisplayName, p.store.SaveDisplayName(name))
}

// MyStats is the local user's progress card.
func (p *Planner) MyStats() study.FriendStats {
	return study.FriendStats{
		ID:            p.selfID,
		Name:          p.displayName,
		TotalMinutes:  p.entries.Totals().Actual,
		GoalsMetCount: summary.CompletedTodoGoals(p.goals.All()),
		LastUpdated:   p.now().UnixMilli(),
	}
}

func (p *Planner) ShareCode() (string, error) {
	return share.Encode(p.MyStats())
}

// AddFriend decodes a share code and stores the card, replacing any card
// with the same id. The list stays ordered by total minutes.
func (p *Planner) AddFriend(code string) (study.FriendStats, error) {
	fs, err := share.Decode(code)
	if err != nil {
		return study.FriendStats{}, err
	}
	friends := make([]study.FriendStats, 0, len(p.friends)+1)
	for _, f := range p.friends {
		if f.ID != fs.ID {
			friends = append(friends, f)
		}
	}
	friends = append(friends, fs)
	summary.SortByMinutes(friends)
	p.friends = friends
	return fs, p.saveFriends()
}

func (p *Planner) RemoveFriend(id string) (bool, error) {
	for i, f := range p.friends {
		if f.ID == id {
			p.friends = append(p.friends[:i], p.friends[i+1:]...)
			return true, p.saveFriends()
		}
	}
	return false, nil
}

func (p *Planner) Friends() []study.FriendStats {
	return append([]study.FriendStats(nil), p.friends...)
}

// Leaderboard ranks the friends and the local user by total minutes.
func (p *Planner) Leaderboard() []study.FriendStats {
	return summary.Leaderboard(p.friends, p.MyStats())
}

// ============================================================
// Persistence
// ============================================================

func (p *Planner) saveEntries() error {
	if p.store == nil {
		return nil
	}
	return p.persistErr(store.KeyEntries, p.store.SaveEntries(p.entries.All()))
}

func (p *Planner) saveGoals() error {
	if p.store == nil {
		return nil
	}
	return p.persistErr(store.KeyGoals, p.store.SaveGoals(p.goals.All()))
}

func (p *Planner) saveFriends() error {
	if p.store == nil {
		return nil
	}
	return p.persistErr(store.KeyFriends, p.store.SaveFriends(p.friends))
}

func (p *Planner) persistErr(key string, err error) error {
	if err == nil {
		return nil
	}
	p.log.Warn("save failed", "key", key, "err", err)
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

package study

import (
	"strings"

	"github.com/google/uuid"
)

// GoalStore owns one Goal per subject. Every operation is keyed by subject
// and is a no-op returning false when the subject is unknown.
type GoalStore struct {
	goals []Goal
	newID func() string
}

func NewGoalStore(goals []Goal) *GoalStore {
	s := &GoalStore{newID: uuid.NewString}
	for _, g := range goals {
		g.Todos = append([]Todo(nil), g.Todos...)
		s.goals = append(s.goals, g)
	}
	return s
}

// SeedGoals returns the first-run goal set: one per subject, target 80, no
// actual score and no todos.
func SeedGoals() []Goal {
	goals := make([]Goal, 0, len(Subjects))
	for _, sub := range Subjects {
		goals = append(goals, Goal{
			Subject:     sub,
			TargetScore: DefaultTargetScore,
			Todos:       []Todo{},
		})
	}
	return goals
}

func (s *GoalStore) SetTargetScore(subject string, score int) bool {
	g := s.find(subject)
	if g == nil {
		return false
	}
	g.TargetScore = score
	return true
}

// SetActualScore records a result; nil clears it.
func (s *GoalStore) SetActualScore(subject string, score *int) bool {
	g := s.find(subject)
	if g == nil {
		return false
	}
	if score == nil {
		g.ActualScore = nil
		return true
	}
	v := *score
	g.ActualScore = &v
	return true
}

// AddTodo appends a todo. Text that is blank after trimming is ignored.
func (s *GoalStore) AddTodo(subject, text string) (Todo, bool) {
	g := s.find(subject)
	if g == nil || strings.TrimSpace(text) == "" {
		return Todo{}, false
	}
	t := Todo{ID: s.newID(), Text: text}
	g.Todos = append(g.Todos, t)
	return t, true
}

func (s *GoalStore) ToggleTodo(subject, todoID string) bool {
	g := s.find(subject)
	if g == nil {
		return false
	}
	for i := range g.Todos {
		if g.Todos[i].ID == todoID {
			g.Todos[i].IsDone = !g.Todos[i].IsDone
			return true
		}
	}
	return false
}

func (s *GoalStore) DeleteTodo(subject, todoID string) bool {
	g := s.find(subject)
	if g == nil {
		return false
	}
	for i := range g.Todos {
		if g.Todos[i].ID == todoID {
			g.Todos = append(g.Todos[:i], g.Todos[i+1:]...)
			return true
		}
	}
	return false
}

func (s *GoalStore) Get(subject string) (Goal, bool) {
	g := s.find(subject)
	if g == nil {
		return Goal{}, false
	}
	return cloneGoal(*g), true
}

// All returns a deep copy of the goals.
func (s *GoalStore) All() []Goal {
	out := make([]Goal, len(s.goals))
	for i, g := range s.goals {
		out[i] = cloneGoal(g)
	}
	return out
}

func (s *GoalStore) find(subject string) *Goal {
	for i := range s.goals {
		if s.goals[i].Subject == subject {
			return &s.goals[i]
		}
	}
	return nil
}

func cloneGoal(g Goal) Goal {
	if g.ActualScore != nil {
		v := *g.ActualScore
		g.ActualScore = &v
	}
	todos := make([]Todo, len(g.Todos))
	copy(todos, g.Todos)
	g.Todos = todos
	return g
}

// Package store owns the in-memory task list and mirrors it to a Slot.
package store

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Makepad-fr/tada/internal/model"
)

// DefaultKey is the slot key holding the task list.
const DefaultKey = "todos"

var (
	// ErrEmptyText rejects tasks whose text trims to nothing. The list is unchanged.
	ErrEmptyText = errors.New("empty text")
	// ErrNoMatch means a reference matched no task.
	ErrNoMatch = errors.New("no matching task")
	// ErrAmbiguous means an id prefix matched more than one task.
	ErrAmbiguous = errors.New("ambiguous task reference")
)

// Store holds the ordered task list, newest first.
type Store struct {
	slot   Slot
	key    string
	tasks  []model.Task
	now    func() time.Time
	newID  func() string
	logger *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and persist events.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides the UUID generator.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithKey sets the slot key. Blank keys are ignored.
func WithKey(key string) Option {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

// New creates a Store over slot and loads the persisted list once.
// Absent or corrupt values load as an empty list; only read failures are errors.
func New(slot Slot, opts ...Option) (*Store, error) {
	s := &Store{
		slot:   slot,
		key:    DefaultKey,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory list with what the slot holds.
func (s *Store) Reload() error {
	b, err := s.slot.Get(s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.tasks = []model.Task{}
			s.logger.Debug("no saved tasks", "key", s.key)
			return nil
		}
		return fmt.Errorf("read %s: %w", s.key, err)
	}
	tasks, err := Decode(b)
	if err != nil {
		s.logger.Warn("saved tasks are unreadable, starting empty", "key", s.key, "err", err)
		s.tasks = []model.Task{}
		return nil
	}
	s.tasks = tasks
	s.logger.Debug("loaded tasks", "key", s.key, "count", len(tasks))
	return nil
}

// Add prepends a new task. Blank text returns ErrEmptyText and changes nothing.
func (s *Store) Add(text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, ErrEmptyText
	}
	t := model.Task{
		ID:        s.newID(),
		Text:      text,
		CreatedAt: s.now().UTC().Round(0),
	}
	s.tasks = append([]model.Task{t}, s.tasks...)
	s.logger.Debug("added task", "id", t.ID)
	return t, s.persist()
}

// Update merges p into the task with the given id. It reports false, and does
// nothing, when no task has that id.
func (s *Store) Update(id string, p model.Patch) (bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	p.Apply(&s.tasks[i])
	s.logger.Debug("updated task", "id", id)
	return true, s.persist()
}

// Toggle flips the completed flag of the task with the given id.
func (s *Store) Toggle(id string) (bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	return s.Update(id, model.CompletedPatch(!s.tasks[i].Completed))
}

// Delete removes the task with the given id if present.
func (s *Store) Delete(id string) (bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.logger.Debug("deleted task", "id", id)
	return true, s.persist()
}

// ClearCompleted removes every completed task and returns how many went.
func (s *Store) ClearCompleted() (int, error) {
	kept := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	s.tasks = kept
	s.logger.Debug("cleared completed", "removed", removed)
	return removed, s.persist()
}

// Tasks returns a copy of the tasks selected by f.
func (s *Store) Tasks(f model.Filter) []model.Task {
	return f.Apply(s.tasks)
}

// Counts tallies the full list.
func (s *Store) Counts() model.Counts {
	return model.Count(s.tasks)
}

// Get looks a task up by exact id.
func (s *Store) Get(id string) (model.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// Resolve finds a task by 1-based position, exact id or unique id prefix.
func (s *Store) Resolve(ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, ErrNoMatch
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(s.tasks) {
			return s.tasks[n-1], nil
		}
	}
	if t, ok := s.Get(ref); ok {
		return t, nil
	}
	var match []model.Task
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %s", ErrNoMatch, ref)
	case 1:
		return match[0], nil
	}
	return model.Task{}, fmt.Errorf("%w: %s matches %d tasks", ErrAmbiguous, ref, len(match))
}

// Close releases the underlying slot.
func (s *Store) Close() error {
	return s.slot.Close()
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole list. The in-memory state is kept on failure.
func (s *Store) persist() error {
	b, err := Encode(s.tasks)
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	if err := s.slot.Put(s.key, b); err != nil {
		s.logger.Error("persist failed", "key", s.key, "err", err)
		return fmt.Errorf("persist: %w", err)
	}
	s.logger.Debug("persisted", "key", s.key, "count", len(s.tasks))
	return nil
}

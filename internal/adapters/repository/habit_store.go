package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/habitkit/habits/internal/domain/entities"
	"github.com/habitkit/habits/internal/infrastructure/logger"
	"github.com/habitkit/habits/internal/infrastructure/metrics"
	"github.com/habitkit/habits/internal/ports"
)

// StorageError reports an I/O failure on the habit file other than the file
// being absent or malformed.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s habit file %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// HabitStore holds every habit in memory and rewrites the whole backing file
// after each mutation. It is not safe for concurrent use.
type HabitStore struct {
	path    string
	order   []string
	habits  map[string]entities.Habit
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// Option configures a HabitStore.
type Option func(*HabitStore)

// WithLogger sets the store logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *HabitStore) {
		s.logger = l.WithComponent("habit_store")
	}
}

// WithMetrics records file writes and store size.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *HabitStore) {
		s.metrics = m
	}
}

var _ ports.HabitRepository = (*HabitStore)(nil)

// NewHabitStore creates a store backed by path and loads its current content.
func NewHabitStore(path string, opts ...Option) (*HabitStore, error) {
	s := &HabitStore{
		path:   path,
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory habits with the content of the backing file.
// A missing or malformed file yields an empty store.
func (s *HabitStore) Load() error {
	s.order = []string{}
	s.habits = map[string]entities.Habit{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debugw("Habit file not found, starting empty", "path", s.path)
			s.metrics.SetHabitCount(0)
			return nil
		}
		s.logger.WithError(err).Errorw("Habit file read failed", "path", s.path)
		return &StorageError{Op: "read", Path: s.path, Err: err}
	}

	order, habits, err := decodeHabits(data)
	if err != nil {
		s.logger.WithError(err).Warnw("Habit file unreadable, starting empty", "path", s.path)
		s.metrics.SetHabitCount(0)
		return nil
	}

	s.order = order
	s.habits = habits
	s.metrics.SetHabitCount(len(order))
	s.logger.Debugw("Habit file loaded", "path", s.path, "habits", len(order))
	return nil
}

// Save rewrites the backing file with every habit.
func (s *HabitStore) Save() error {
	start := time.Now()

	data, err := encodeHabits(s.order, s.habits)
	if err != nil {
		return &StorageError{Op: "encode", Path: s.path, Err: err}
	}

	err = os.WriteFile(s.path, data, 0o644)
	s.metrics.ObserveFileWrite(time.Since(start), err)
	s.logger.LogStorageWrite(s.path, len(s.order), len(data), err)
	if err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}

	s.metrics.SetHabitCount(len(s.order))
	return nil
}

// Add inserts a new habit with a zero completion count. Every field must be
// valid UTF-8 so that it survives the round trip through the file.
func (s *HabitStore) Add(name, description string, frequency entities.Frequency) error {
	if !utf8.ValidString(name) || !utf8.ValidString(description) || !utf8.ValidString(string(frequency)) {
		return fmt.Errorf("%w: text is not valid UTF-8", entities.ErrInvalidHabit)
	}
	if _, ok := s.habits[name]; ok {
		return entities.ErrDuplicateHabit
	}

	s.habits[name] = entities.NewHabit(description, frequency)
	s.order = append(s.order, name)

	if err := s.Save(); err != nil {
		delete(s.habits, name)
		s.order = s.order[:len(s.order)-1]
		return err
	}
	return nil
}

// MarkCompleted increments the completion count by one.
func (s *HabitStore) MarkCompleted(name string) error {
	habit, ok := s.habits[name]
	if !ok {
		return entities.ErrHabitNotFound
	}

	previous := habit
	if err := habit.Complete(); err != nil {
		return err
	}
	s.habits[name] = habit

	if err := s.Save(); err != nil {
		s.habits[name] = previous
		return err
	}
	return nil
}

// ViewProgress returns the completion count without touching the file.
func (s *HabitStore) ViewProgress(name string) (int, error) {
	habit, ok := s.habits[name]
	if !ok {
		return 0, entities.ErrHabitNotFound
	}
	return habit.CompletionCount, nil
}

// Remove deletes a habit.
func (s *HabitStore) Remove(name string) error {
	habit, ok := s.habits[name]
	if !ok {
		return entities.ErrHabitNotFound
	}

	idx := slices.Index(s.order, name)
	delete(s.habits, name)
	s.order = slices.Delete(s.order, idx, idx+1)

	if err := s.Save(); err != nil {
		s.habits[name] = habit
		s.order = slices.Insert(s.order, idx, name)
		return err
	}
	return nil
}

// ResetProgress zeroes every completion count and saves once.
func (s *HabitStore) ResetProgress() error {
	previous := make(map[string]entities.Habit, len(s.habits))
	for name, habit := range s.habits {
		previous[name] = habit
		habit.Reset()
		s.habits[name] = habit
	}

	if err := s.Save(); err != nil {
		s.habits = previous
		return err
	}
	return nil
}

// Get returns a copy of one habit.
func (s *HabitStore) Get(name string) (entities.Habit, error) {
	habit, ok := s.habits[name]
	if !ok {
		return entities.Habit{}, entities.ErrHabitNotFound
	}
	return habit, nil
}

// List returns every habit in insertion order.
func (s *HabitStore) List() []entities.NamedHabit {
	out := make([]entities.NamedHabit, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, entities.NamedHabit{Name: name, Habit: s.habits[name]})
	}
	return out
}

// Len returns the number of habits.
func (s *HabitStore) Len() int {
	return len(s.order)
}

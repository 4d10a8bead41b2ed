package ports

import (
	"github.com/habitkit/habits/internal/domain/entities"
)

// HabitRepository defines the interface for habit persistence.
// Every mutating call persists the whole collection before returning.
type HabitRepository interface {
	Add(name, description string, frequency entities.Frequency) error
	MarkCompleted(name string) error
	ViewProgress(name string) (int, error)
	Remove(name string) error
	ResetProgress() error
	Get(name string) (entities.Habit, error)
	List() []entities.NamedHabit
	Len() int
}

package ports

import (
	"context"

	"github.com/habitkit/habits/internal/domain/entities"
)

// HabitService interface for habit tracking operations
type HabitService interface {
	AddHabit(ctx context.Context, req AddHabitRequest) (*entities.NamedHabit, error)
	MarkCompleted(ctx context.Context, name string) (int, error)
	ViewProgress(ctx context.Context, name string) (int, error)
	RemoveHabit(ctx context.Context, name string) error
	ResetProgress(ctx context.Context) error
	ListHabits(ctx context.Context) ([]entities.NamedHabit, error)
}

// AddHabitRequest carries the user supplied fields for a new habit.
type AddHabitRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Frequency   string `json:"frequency" validate:"max=50"`
}

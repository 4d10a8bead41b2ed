package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/habitkit/habits/internal/domain/entities"
	"github.com/habitkit/habits/internal/infrastructure/logger"
	"github.com/habitkit/habits/internal/infrastructure/metrics"
	"github.com/habitkit/habits/internal/ports"
)

// HabitService handles habit-related operations
type HabitService struct {
	habitRepo ports.HabitRepository
	logger    *logger.Logger
	metrics   *metrics.Metrics
	validate  *validator.Validate
}

var _ ports.HabitService = (*HabitService)(nil)

// NewHabitService creates a new habit service. m may be nil.
func NewHabitService(habitRepo ports.HabitRepository, logger *logger.Logger, m *metrics.Metrics) *HabitService {
	return &HabitService{
		habitRepo: habitRepo,
		logger:    logger.WithComponent("habit_service"),
		metrics:   m,
		validate:  validator.New(),
	}
}

// AddHabit creates a new habit
func (s *HabitService) AddHabit(ctx context.Context, req ports.AddHabitRequest) (*entities.NamedHabit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(req); err != nil {
		s.observe("add", err)
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidHabit, err)
	}

	frequency := entities.Frequency(req.Frequency)
	if frequency != "" && !frequency.Known() {
		s.logger.Debugw("Unrecognised frequency label", "habit", req.Name, "frequency", req.Frequency)
	}

	err := s.habitRepo.Add(req.Name, req.Description, frequency)
	s.observe("add", err)
	if err != nil {
		return nil, fmt.Errorf("add habit %q: %w", req.Name, err)
	}

	habit, err := s.habitRepo.Get(req.Name)
	if err != nil {
		return nil, fmt.Errorf("add habit %q: %w", req.Name, err)
	}

	s.logger.LogHabitAction(req.Name, "add", map[string]interface{}{
		"frequency": habit.Frequency,
	})

	return &entities.NamedHabit{Name: req.Name, Habit: habit}, nil
}

// MarkCompleted records one completion and returns the new count
func (s *HabitService) MarkCompleted(ctx context.Context, name string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	err := s.habitRepo.MarkCompleted(name)
	s.observe("complete", err)
	if err != nil {
		return 0, fmt.Errorf("mark habit %q completed: %w", name, err)
	}

	count, err := s.habitRepo.ViewProgress(name)
	if err != nil {
		return 0, fmt.Errorf("mark habit %q completed: %w", name, err)
	}

	s.logger.LogHabitAction(name, "complete", map[string]interface{}{
		"completion_count": count,
	})

	return count, nil
}

// ViewProgress returns the completion count of a habit
func (s *HabitService) ViewProgress(ctx context.Context, name string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count, err := s.habitRepo.ViewProgress(name)
	s.observe("progress", err)
	if err != nil {
		return 0, fmt.Errorf("view progress of habit %q: %w", name, err)
	}

	return count, nil
}

// RemoveHabit deletes a habit
func (s *HabitService) RemoveHabit(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.habitRepo.Remove(name)
	s.observe("remove", err)
	if err != nil {
		return fmt.Errorf("remove habit %q: %w", name, err)
	}

	s.logger.LogHabitAction(name, "remove", nil)
	return nil
}

// ResetProgress zeroes the completion count of every habit
func (s *HabitService) ResetProgress(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.habitRepo.ResetProgress()
	s.observe("reset", err)
	if err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}

	s.logger.Infow("Progress reset", "habits", s.habitRepo.Len())
	return nil
}

// ListHabits returns every habit in insertion order
func (s *HabitService) ListHabits(ctx context.Context) ([]entities.NamedHabit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	habits := s.habitRepo.List()
	s.observe("list", nil)
	return habits, nil
}

func (s *HabitService) observe(operation string, err error) {
	s.metrics.ObserveOperation(operation, resultOf(err))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, entities.ErrHabitNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, entities.ErrDuplicateHabit):
		return metrics.ResultDuplicate
	case errors.Is(err, entities.ErrInvalidHabit), errors.Is(err, entities.ErrCountLimit):
		return metrics.ResultInvalid
	default:
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return metrics.ResultInvalid
		}
		return metrics.ResultError
	}
}

// IsUserError reports whether err is a habit-level failure the user can
// correct, as opposed to a storage failure.
func IsUserError(err error) bool {
	return errors.Is(err, entities.ErrHabitNotFound) ||
		errors.Is(err, entities.ErrDuplicateHabit) ||
		errors.Is(err, entities.ErrInvalidHabit) ||
		errors.Is(err, entities.ErrCountLimit)
}

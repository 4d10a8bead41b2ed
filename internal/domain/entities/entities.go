package entities

import (
	"errors"
	"math"
)

// Common errors
var (
	ErrHabitNotFound  = errors.New("habit not found")
	ErrDuplicateHabit = errors.New("habit already exists")
	ErrInvalidHabit   = errors.New("invalid habit")
	ErrCountLimit     = errors.New("completion count limit reached")
)

// Frequency is a short categorical label for how often a habit is expected.
// Any string is accepted; the constants below are the labels the menu offers.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// DefaultFrequency is offered when a habit is added from the command line
// without a frequency.
const DefaultFrequency = FrequencyDaily

// Known reports whether f is one of the offered labels.
func (f Frequency) Known() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly:
		return true
	default:
		return false
	}
}

// Habit is the persisted record for a single tracked habit.
// The habit name is the key it is stored under and is not part of the record.
type Habit struct {
	Description     string    `json:"description"`
	Frequency       Frequency `json:"frequency"`
	CompletionCount int       `json:"completion_count" validate:"min=0"`
}

// NamedHabit pairs a habit record with its name for listings.
type NamedHabit struct {
	Name  string `json:"name"`
	Habit Habit  `json:"habit"`
}

// NewHabit returns a fresh record with a zero completion count. The
// frequency is stored as given, including the empty label.
func NewHabit(description string, frequency Frequency) Habit {
	return Habit{
		Description: description,
		Frequency:   frequency,
	}
}

// Complete records one completion. The count never wraps.
func (h *Habit) Complete() error {
	if h.CompletionCount >= math.MaxInt {
		return ErrCountLimit
	}
	h.CompletionCount++
	return nil
}

// Reset clears the completion count.
func (h *Habit) Reset() {
	h.CompletionCount = 0
}

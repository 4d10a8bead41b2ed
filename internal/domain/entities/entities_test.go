package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHabit(t *testing.T) {
	h := NewHabit("Daily workout", FrequencyWeekly)
	assert.Equal(t, Habit{Description: "Daily workout", Frequency: FrequencyWeekly}, h)

	h = NewHabit("", "")
	assert.Equal(t, Frequency(""), h.Frequency)
}

func TestHabit_CompleteAndReset(t *testing.T) {
	var h Habit
	assert.NoError(t, h.Complete())
	assert.NoError(t, h.Complete())
	assert.Equal(t, 2, h.CompletionCount)

	h.Reset()
	assert.Equal(t, 0, h.CompletionCount)
}

func TestFrequency_Known(t *testing.T) {
	assert.True(t, FrequencyDaily.Known())
	assert.True(t, FrequencyWeekly.Known())
	assert.False(t, Frequency("monthly").Known())
	assert.False(t, Frequency("Daily").Known())
}

func TestHabit_CompleteStopsAtLimit(t *testing.T) {
	h := Habit{CompletionCount: math.MaxInt}
	assert.ErrorIs(t, h.Complete(), ErrCountLimit)
	assert.Equal(t, math.MaxInt, h.CompletionCount)
}

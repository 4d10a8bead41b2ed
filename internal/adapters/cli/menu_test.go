package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitkit/habits/internal/adapters/repository"
	"github.com/habitkit/habits/internal/application/services"
	"github.com/habitkit/habits/internal/infrastructure/logger"
)

func runMenu(t *testing.T, path string, lines ...string) (string, error) {
	t.Helper()
	store, err := repository.NewHabitStore(path)
	require.NoError(t, err)
	svc := services.NewHabitService(store, logger.NewNop(), nil)

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	err = NewMenu(svc, in, &out).Run(context.Background())
	return out.String(), err
}

func TestMenu_FullSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")

	out, err := runMenu(t, path,
		"1", "Exercise", "Daily workout", "daily",
		"2", "Exercise",
		"2", "Exercise",
		"3", "Exercise",
		"5",
		"3", "Exercise",
		"4", "Exercise",
		"6",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Habit Tracker")
	assert.Contains(t, out, "6. Exit")
	assert.Contains(t, out, "Habit 'Exercise' added!")
	assert.Contains(t, out, "Habit 'Exercise' marked as completed!")
	assert.Contains(t, out, "Progress for 'Exercise': 2")
	assert.Contains(t, out, "All progress has been reset.")
	assert.Contains(t, out, "Progress for 'Exercise': 0")
	assert.Contains(t, out, "Habit 'Exercise' removed!")
	assert.Contains(t, out, "Exiting the Habit Tracker.")
}

func TestMenu_PersistsBetweenSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")

	_, err := runMenu(t, path, "1", "Read", "", "weekly", "2", "Read", "6")
	require.NoError(t, err)

	out, err := runMenu(t, path, "3", "Read", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress for 'Read': 1")
}

func TestMenu_HabitErrorsDoNotEndSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")

	out, err := runMenu(t, path,
		"2", "Nonexistent",
		"3", "Nonexistent",
		"4", "Nonexistent",
		"1", "Exercise", "", "",
		"1", "Exercise", "", "",
		"1", "", "", "",
		"3", "Exercise",
		"6",
	)
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, "habit not found"))
	assert.Contains(t, out, "habit already exists")
	assert.Contains(t, out, "invalid habit")
	assert.Contains(t, out, "Progress for 'Exercise': 0")
	assert.Contains(t, out, "Exiting the Habit Tracker.")
}

func TestMenu_InvalidChoice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")

	out, err := runMenu(t, path, "9", "abc", "", "6")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "Invalid choice, please try again."))

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "invalid choices must not touch the store")
}

func TestMenu_EndOfInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")

	out, err := runMenu(t, path, "1", "Exercise")
	require.NoError(t, err)
	assert.NotContains(t, out, "added")
}

func TestMenu_StorageErrorEndsSession(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "habits.json")

	store, err := repository.NewHabitStore(path)
	require.NoError(t, err)
	svc := services.NewHabitService(store, logger.NewNop(), nil)
	require.NoError(t, os.RemoveAll(dir))

	var out bytes.Buffer
	in := strings.NewReader("1\nExercise\n\n\n3\nExercise\n6\n")
	err = NewMenu(svc, in, &out).Run(context.Background())

	var storageErr *repository.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.NotContains(t, out.String(), "Error:", "storage errors are reported by the caller")
	assert.NotContains(t, out.String(), "Progress for")
}

func TestMenu_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")
	store, err := repository.NewHabitStore(path)
	require.NoError(t, err)
	svc := services.NewHabitService(store, logger.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err = NewMenu(svc, strings.NewReader("6\n"), &out).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMenu_CancelWhileWaitingForInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")
	store, err := repository.NewHabitStore(path)
	require.NoError(t, err)
	svc := services.NewHabitService(store, logger.NewNop(), nil)

	in, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewMenu(svc, in, io.Discard).Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("menu kept waiting for input after cancellation")
	}
}

func TestMenu_LongLineIsAnInvalidChoice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")

	out, err := runMenu(t, path, strings.Repeat("x", 70000), "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid choice, please try again.")
	assert.Contains(t, out, "Exiting the Habit Tracker.")
}

func TestMenu_EmptyFrequencyStoredAsTyped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")

	_, err := runMenu(t, path, "1", "Read", "", "", "6")
	require.NoError(t, err)

	store, err := repository.NewHabitStore(path)
	require.NoError(t, err)
	habit, err := store.Get("Read")
	require.NoError(t, err)
	assert.Equal(t, "", string(habit.Frequency))
}

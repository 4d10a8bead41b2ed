// Package cli is the interactive text menu. It only collects strings and
// forwards them to a ports.HabitService.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/habitkit/habits/internal/application/services"
	"github.com/habitkit/habits/internal/ports"
)

// Menu choices
const (
	ChoiceAdd      = "1"
	ChoiceComplete = "2"
	ChoiceProgress = "3"
	ChoiceRemove   = "4"
	ChoiceReset    = "5"
	ChoiceExit     = "6"
)

var menuEntries = []struct {
	choice string
	label  string
}{
	{ChoiceAdd, "Add Habit"},
	{ChoiceComplete, "Mark Habit as Completed"},
	{ChoiceProgress, "View Progress"},
	{ChoiceRemove, "Remove Habit"},
	{ChoiceReset, "Reset Progress"},
	{ChoiceExit, "Exit"},
}

// Menu drives one interactive session against a habit service.
type Menu struct {
	service ports.HabitService
	in      *bufio.Reader
	out     io.Writer
	lines   <-chan line

	title lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
}

// line is one input line or the error that ended input.
type line struct {
	text string
	err  error
}

// NewMenu creates a menu reading from in and writing to out.
func NewMenu(service ports.HabitService, in io.Reader, out io.Writer) *Menu {
	r := lipgloss.NewRenderer(out)
	return &Menu{
		service: service,
		in:      bufio.NewReader(in),
		out:     out,
		title:   r.NewStyle().Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Run loops until the user exits, input ends or ctx is cancelled. Habit
// errors are printed and the loop continues; storage failures end the
// session and are returned to the caller.
func (m *Menu) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	quit := make(chan struct{})
	defer close(quit)
	m.lines = m.readLines(quit)

	for {
		m.printMenu()
		choice, err := m.prompt(ctx, "Choose an option: ")
		if err != nil {
			return m.stop(err)
		}

		choice = strings.TrimSpace(choice)
		if choice == ChoiceExit {
			fmt.Fprintln(m.out, "Exiting the Habit Tracker.")
			return nil
		}

		if err := m.dispatch(ctx, choice); err != nil {
			if services.IsUserError(err) {
				m.failf("Error: %v", err)
				continue
			}
			return m.stop(err)
		}
	}
}

// stop ends the session. End of input is a normal exit.
func (m *Menu) stop(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(m.out)
		return nil
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(m.out)
	}
	return err
}

// readLines feeds input lines to the session until input ends or quit is
// closed. Lines have no length limit.
func (m *Menu) readLines(quit <-chan struct{}) <-chan line {
	lines := make(chan line)
	go func() {
		defer close(lines)
		for {
			text, err := m.in.ReadString('\n')
			if text != "" {
				select {
				case lines <- line{text: strings.TrimRight(text, "\r\n")}:
				case <-quit:
					return
				}
			}
			if err != nil {
				select {
				case lines <- line{err: err}:
				case <-quit:
				}
				return
			}
		}
	}()
	return lines
}

// dispatch runs one menu choice.
func (m *Menu) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case ChoiceAdd:
		name, err := m.prompt(ctx, "Enter habit name: ")
		if err != nil {
			return err
		}
		description, err := m.prompt(ctx, "Enter description (optional): ")
		if err != nil {
			return err
		}
		frequency, err := m.prompt(ctx, "Enter frequency (daily/weekly): ")
		if err != nil {
			return err
		}
		if _, err := m.service.AddHabit(ctx, ports.AddHabitRequest{
			Name:        name,
			Description: description,
			Frequency:   frequency,
		}); err != nil {
			return err
		}
		m.okf("Habit '%s' added!", name)

	case ChoiceComplete:
		name, err := m.prompt(ctx, "Enter habit name: ")
		if err != nil {
			return err
		}
		if _, err := m.service.MarkCompleted(ctx, name); err != nil {
			return err
		}
		m.okf("Habit '%s' marked as completed!", name)

	case ChoiceProgress:
		name, err := m.prompt(ctx, "Enter habit name: ")
		if err != nil {
			return err
		}
		count, err := m.service.ViewProgress(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(m.out, "Progress for '%s': %d\n", name, count)

	case ChoiceRemove:
		name, err := m.prompt(ctx, "Enter habit name: ")
		if err != nil {
			return err
		}
		if err := m.service.RemoveHabit(ctx, name); err != nil {
			return err
		}
		m.okf("Habit '%s' removed!", name)

	case ChoiceReset:
		if err := m.service.ResetProgress(ctx); err != nil {
			return err
		}
		m.okf("All progress has been reset.")

	default:
		fmt.Fprintln(m.out, "Invalid choice, please try again.")
	}
	return nil
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, m.title.Render("Habit Tracker"))
	for _, e := range menuEntries {
		fmt.Fprintf(m.out, "%s. %s\n", e.choice, e.label)
	}
}

// prompt writes label and waits for one line. It returns io.EOF at end of
// input and ctx.Err() once ctx is cancelled.
func (m *Menu) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(m.out, label)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-m.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

func (m *Menu) okf(format string, args ...interface{}) {
	fmt.Fprintln(m.out, m.ok.Render(fmt.Sprintf(format, args...)))
}

func (m *Menu) failf(format string, args ...interface{}) {
	fmt.Fprintln(m.out, m.fail.Render(fmt.Sprintf(format, args...)))
}


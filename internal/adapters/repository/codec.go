package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/habitkit/habits/internal/domain/entities"
)

// ErrStorageUnreadable marks a habit file whose content is not a habit
// document. Load recovers from it with an empty store.
var ErrStorageUnreadable = errors.New("habit file is not a valid habit document")

const fileIndent = "    "

var recordValidator = validator.New()

// decodeHabits parses a top-level JSON object of habit records, keeping the
// order in which names appear. A repeated name keeps its first position and
// takes the last value.
func decodeHabits(data []byte) ([]string, map[string]entities.Habit, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageUnreadable, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("%w: top level is not an object", ErrStorageUnreadable)
	}

	order := []string{}
	habits := map[string]entities.Habit{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrStorageUnreadable, err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("%w: unexpected token %v", ErrStorageUnreadable, tok)
		}

		var habit entities.Habit
		if err := dec.Decode(&habit); err != nil {
			return nil, nil, fmt.Errorf("%w: habit %q: %v", ErrStorageUnreadable, name, err)
		}
		if err := recordValidator.Struct(habit); err != nil {
			return nil, nil, fmt.Errorf("%w: habit %q: %v", ErrStorageUnreadable, name, err)
		}

		if _, seen := habits[name]; !seen {
			order = append(order, name)
		}
		habits[name] = habit
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageUnreadable, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("%w: trailing data after habit object", ErrStorageUnreadable)
	}

	return order, habits, nil
}

// encodeHabits renders the habits as one indented JSON object in the given order.
func encodeHabits(order []string, habits map[string]entities.Habit) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, name := range order {
		if i > 0 {
			compact.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("encode habit name %q: %w", name, err)
		}
		value, err := json.Marshal(habits[name])
		if err != nil {
			return nil, fmt.Errorf("encode habit %q: %w", name, err)
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.Write(value)
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", fileIndent); err != nil {
		return nil, fmt.Errorf("indent habit document: %w", err)
	}
	return out.Bytes(), nil
}

package entity

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// PerformanceSignal is the learner's graded outcome for one exercise.
type PerformanceSignal string

const (
	SignalCorrectEasy PerformanceSignal = "correct_easy"
	SignalCorrectHard PerformanceSignal = "correct_hard"
	SignalIncorrect   PerformanceSignal = "incorrect"
)

var (
	_ encoding.TextMarshaler   = PerformanceSignal("")
	_ encoding.TextUnmarshaler = (*PerformanceSignal)(nil)
)

// IsValid reports whether s is one of the three known signals. Callers
// must reject invalid signals before invoking the SRS engine; the
// engine never coerces them.
func (s PerformanceSignal) IsValid() bool {
	switch s {
	case SignalCorrectEasy, SignalCorrectHard, SignalIncorrect:
		return true
	}
	return false
}

// Correct reports whether the signal counts as a correct attempt.
func (s PerformanceSignal) Correct() bool {
	return s == SignalCorrectEasy || s == SignalCorrectHard
}

func (s PerformanceSignal) String() string { return string(s) }

// MarshalText implements encoding.TextMarshaler.
func (s PerformanceSignal) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSignal, string(s))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *PerformanceSignal) UnmarshalText(text []byte) error {
	v := PerformanceSignal(text)
	if !v.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSignal, text)
	}
	*s = v
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *PerformanceSignal) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignal, data)
	}
	return s.UnmarshalText([]byte(raw))
}

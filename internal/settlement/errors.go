package settlement

import "fmt"

// ConfigurationError reports a roster that cannot be set up: fewer than two
// participants or a malformed participant entry.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// InputError reports a malformed debt list: a bad count, a non-positive
// amount or a reference to an unknown participant.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "input error: " + e.Reason
}

// InvariantViolation is returned by the planner when a round cannot make
// progress. It indicates a bug, not bad input.
type InvariantViolation struct {
	Round  int
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in round %d: %s", e.Round, e.Reason)
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func inputErrorf(format string, args ...any) error {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

package pixbuf

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat reports a signature mismatch or a structurally malformed container.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrUnsupportedFormat reports a well-formed input outside the supported subset.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrInsufficientData reports a stream or buffer exhausted before a read could be satisfied.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrIO reports an underlying open, read, write or close failure.
	ErrIO = errors.New("i/o error")
)

// Phase names the stage of a decode or encode in which a failure happened.
type Phase string

const (
	PhaseInit     Phase = "init"
	PhaseHeader   Phase = "header"
	PhaseBody     Phase = "body"
	PhaseOpen     Phase = "open"
	PhaseFinalize Phase = "finalize"
)

// PhaseError is returned by the codecs so callers can tell a corrupt header
// apart from a truncated body.
type PhaseError struct {
	Op    string
	Phase Phase
	Path  string
	Err   error
}

func (e *PhaseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: error during %s: %v", e.Op, e.Path, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s: error during %s: %v", e.Op, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// PhaseOf returns the phase recorded in err, or "" if err carries none.
func PhaseOf(err error) Phase {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase
	}
	return ""
}

// IOError wraps an operating system error so that it matches both ErrIO and the cause.
func IOError(action string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, action, err)
}

package core

import (
	"errors"
	"fmt"
)

// Exported variables.
var (
	// ErrExhausted is wrapped by ExhaustedError.
	ErrExhausted = errors.New("substitute sequence exhausted")
	// ErrIncompatible reports a behavior that cannot serve the target's type.
	ErrIncompatible = errors.New("behavior incompatible with target")
	// ErrResolution is wrapped by ResolutionError.
	ErrResolution = errors.New("cannot resolve target")
	// ErrScopeClosed reports a registration against a scope that already restored.
	ErrScopeClosed = errors.New("scope already closed")
)

// ExhaustedError is raised at the call site when a Sequence behavior is invoked
// more times than it has entries.
type ExhaustedError struct {
	Target string
	Len    int
	Call   int // 1-indexed call number that found the sequence empty
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %v: call %d, but only %d values configured", e.Target, ErrExhausted, e.Call, e.Len)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrExhausted
}

// ResolutionError is returned when a dotted path does not name a declared seam.
type ResolutionError struct {
	Path   string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrResolution, e.Path, e.Reason)
}

func (e *ResolutionError) Unwrap() error {
	return ErrResolution
}

// incompatible wraps ErrIncompatible with the target and a reason.
func incompatible(target string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrIncompatible, target, fmt.Sprintf(format, args...))
}

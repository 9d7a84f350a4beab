package payload

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every local validation failure. Builders
// return it before any request is issued.
var ErrInvalidInput = errors.New("invalid input")

// InputError names the offending input element.
type InputError struct {
	// Path locates the element, e.g. carbon_copies[1]
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Is reports ErrInvalidInput so callers can test with errors.Is.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func inputError(path string, err error) *InputError {
	return &InputError{Path: path, Err: err}
}

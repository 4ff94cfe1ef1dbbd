package lens

import (
	"errors"
	"fmt"
)

// Domain errors for lens runs.
var (
	// ErrParameterBounds indicates a parameter value is outside its valid range.
	ErrParameterBounds = errors.New("lens: parameter out of valid bounds")

	// ErrUnknownSampler indicates an interpolation kernel name that is not registered.
	ErrUnknownSampler = errors.New("lens: unknown sampler")

	// ErrUnknownParam indicates a parameter name that Params does not have.
	ErrUnknownParam = errors.New("lens: unknown parameter")

	// ErrCanceled indicates the run was interrupted before the field was complete.
	ErrCanceled = errors.New("lens: run canceled by context")
)

// ValidationError reports a single rejected parameter.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lens: invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrParameterBounds
}

package usecases

import (
	"errors"
	"fmt"
)

// ErrValidation marks a request the console refuses to forward. The
// wrapped message names the offending field.
var ErrValidation = errors.New("invalid request")

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

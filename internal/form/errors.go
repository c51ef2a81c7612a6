package form

import (
	"errors"
	"fmt"
)

// ErrAborted is returned when the user cancels collection interactively.
// No output of any kind has been produced at that point.
var ErrAborted = errors.New("input aborted")

// MissingFieldError reports a required field without a value.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q is empty", e.Field)
}

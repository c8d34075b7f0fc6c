package builder

import (
	"errors"
	"fmt"
)

var (
	ErrPostsDirNotFound = errors.New("posts directory not found")
	ErrNotDir           = errors.New("not a directory")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidDate      = errors.New("invalid date")
)

// ValidationError reports a post that cannot be turned into a feed item.
type ValidationError struct {
	File  string
	Field string
	Value interface{}
	Err   error
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrInvalidDate) {
		return fmt.Sprintf("invalid date in %s: %v", e.File, e.Value)
	}

	return fmt.Sprintf("post %s is missing required field %q", e.File, e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

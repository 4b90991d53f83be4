package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalogue is returned when a catalogue source yields zero rows.
	ErrEmptyCatalogue = errors.New("catalogue is empty")

	// ErrEncoderUnavailable is returned when the embedding encoder cannot be
	// reached. Fatal to the request that triggered it.
	ErrEncoderUnavailable = errors.New("encoder unavailable")
)

// SchemaError reports a required catalogue column that is missing.
type SchemaError struct {
	Source string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("catalogue %s: missing required column %q", e.Source, e.Column)
}

// ValidationError rejects caller input before any work happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

package editor

import (
	"errors"
	"fmt"
)

// Editor errors.
var (
	// ErrInvalidValue rejects an edit without a specific message.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNoSession indicates no editor session is open.
	ErrNoSession = errors.New("no editor session")

	// ErrNotEditable indicates the row has no editable cells.
	ErrNotEditable = errors.New("row has no editable cells")
)

// InvalidValueMessage is shown when a validator gives no message of its own.
const InvalidValueMessage = "Invalid value"

// ValidationError reports a rejected cell edit.
type ValidationError struct {
	Ordinal  int
	Property string
	Err      error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Property, Message(e.Err))
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Message returns the user-facing text for a validation failure.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		err = ve.Err
	}
	if err == nil || errors.Is(err, ErrInvalidValue) || err.Error() == "" {
		return InvalidValueMessage
	}
	return err.Error()
}

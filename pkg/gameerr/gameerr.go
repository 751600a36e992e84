// Package gameerr defines the error kinds returned across the tool boundary.
// Every failure carries a short machine-readable kind and a human-readable hint.
package gameerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindAlreadyExists     Kind = "already_exists"
	KindMalformed         Kind = "malformed"
	KindTypeMismatch      Kind = "type_mismatch"
	KindValueNotFound     Kind = "value_not_found"
	KindInvalidDelta      Kind = "invalid_delta"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindNoSuchExit        Kind = "no_such_exit"
	KindCorruptMap        Kind = "corrupt_map"
	KindInternal          Kind = "internal"
)

// Error is a classified game failure.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	// ValidExits is populated for KindNoSuchExit.
	ValidExits []string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind, so errors.Is(err, gameerr.NotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons by kind.
var (
	NotFound          = &Error{Kind: KindNotFound}
	AlreadyExists     = &Error{Kind: KindAlreadyExists}
	Malformed         = &Error{Kind: KindMalformed}
	TypeMismatch      = &Error{Kind: KindTypeMismatch}
	ValueNotFound     = &Error{Kind: KindValueNotFound}
	InvalidDelta      = &Error{Kind: KindInvalidDelta}
	InsufficientFunds = &Error{Kind: KindInsufficientFunds}
	NoSuchExit        = &Error{Kind: KindNoSuchExit}
	CorruptMap        = &Error{Kind: KindCorruptMap}
)

// New creates an error of the given kind.
func New(kind Kind, message, hint string) *Error {
	return &Error{Kind: kind, Message: message, Hint: hint}
}

// Newf creates an error with a formatted message and no hint.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, err error, message, hint string) *Error {
	return &Error{Kind: kind, Message: message, Hint: hint, Err: err}
}

// WithHint returns a copy of e carrying hint.
func (e *Error) WithHint(hint string) *Error {
	c := *e
	c.Hint = hint
	return &c
}

// KindOf reports the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

// As extracts a *Error from err. Unclassified errors are wrapped as KindInternal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return &Error{
		Kind:    KindInternal,
		Message: err.Error(),
		Hint:    "An unexpected error occurred; try again or start a new session",
		Err:     err,
	}
}

// Package apperr tags errors with the failure class reported to the user.
package apperr

import "errors"

// Kind classifies a fatal failure.
type Kind int

const (
	Unknown Kind = iota
	Usage
	ConfigIO
	MissingCredential
	Network
	Decode
	Interaction
	Launch
)

// String is the label printed next to "Error" on stderr.
func (k Kind) String() string {
	switch k {
	case Usage:
		return "usage"
	case ConfigIO:
		return "config"
	case MissingCredential:
		return "credentials"
	case Network:
		return "network"
	case Decode:
		return "decode"
	case Interaction:
		return "interaction"
	case Launch:
		return "browser"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Wrap tags err with kind. A nil err stays nil. An error that is already
// tagged keeps its first kind.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind err was tagged with, or Unknown.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return Unknown
}

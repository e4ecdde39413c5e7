package services

import "errors"

// Kind classifies a service failure so transports can map it to a status.
type Kind string

const (
	KindAuthenticationRequired Kind = "authentication_required"
	KindForbidden              Kind = "forbidden"
	KindNotFound               Kind = "not_found"
	KindInvalidArgument        Kind = "invalid_argument"
	KindConflict               Kind = "conflict"
	KindInvalidTransition      Kind = "invalid_transition"
	KindInternal               Kind = "internal"
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, ErrNotFound) regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

var (
	ErrAuthenticationRequired = newError(KindAuthenticationRequired, "authentication required")
	ErrForbidden              = newError(KindForbidden, "forbidden")
	ErrNotFound               = newError(KindNotFound, "not found")
	ErrInvalidArgument        = newError(KindInvalidArgument, "invalid argument")
	ErrConflict               = newError(KindConflict, "conflict")
	ErrInvalidTransition      = newError(KindInvalidTransition, "invalid status transition")
	ErrInternal               = newError(KindInternal, "internal error")

	// ErrSchedulingConflict is the Conflict raised when a tutor's calendar
	// already holds an active booking overlapping the requested window.
	ErrSchedulingConflict = newError(KindConflict, "tutor already has a booking in this time slot")
)

func Forbidden(msg string) error       { return newError(KindForbidden, msg) }
func NotFound(msg string) error        { return newError(KindNotFound, msg) }
func InvalidArgument(msg string) error { return newError(KindInvalidArgument, msg) }
func Conflict(msg string) error        { return newError(KindConflict, msg) }

// KindOf reports the Kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

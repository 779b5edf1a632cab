// Package apperr is the error taxonomy shared by the core services and the
// request gateway. Services return *Error values (or wrap them); only the
// gateway turns a Kind into a transport status.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the coarse class of a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindBusinessRule
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindBusinessRule:
		return "business_rule_violation"
	default:
		return "internal"
	}
}

// Reason distinguishes failures inside a Kind. Empty for generic errors.
type Reason string

const (
	ReasonInvalidDateRange     Reason = "invalid_date_range"
	ReasonPropertyNotFound     Reason = "property_not_found"
	ReasonSelfBookingForbidden Reason = "self_booking_forbidden"
	ReasonPropertyUnavailable  Reason = "property_unavailable"
	ReasonDateConflict         Reason = "date_conflict"
	ReasonDuplicateEmail       Reason = "duplicate_email"
	ReasonInvalidCredentials   Reason = "invalid_credentials"
	ReasonInvalidToken         Reason = "invalid_token"
	ReasonUserVanished         Reason = "user_vanished"
)

// Error is a classified failure. Message is safe to show to the caller for
// every kind except KindInternal.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and reason so that a freshly built error compares equal
// to the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

// Code is the stable identifier reported to callers.
func (e *Error) Code() string {
	if e.Reason != "" {
		return string(e.Reason)
	}
	return e.Kind.String()
}

// Wrap attaches a cause while keeping the kind and reason of e.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Reason: e.Reason, Message: e.Message, Err: err}
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Reason: e.Reason, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

var (
	ErrForbidden = &Error{Kind: KindForbidden, Message: "forbidden"}

	ErrInvalidDateRange = &Error{Kind: KindBusinessRule, Reason: ReasonInvalidDateRange,
		Message: "start date must not be in the past and the stay must be at least one night"}
	ErrPropertyNotFound = &Error{Kind: KindNotFound, Reason: ReasonPropertyNotFound,
		Message: "property not found"}
	ErrSelfBookingForbidden = &Error{Kind: KindBusinessRule, Reason: ReasonSelfBookingForbidden,
		Message: "owners cannot book their own property"}
	ErrPropertyUnavailable = &Error{Kind: KindBusinessRule, Reason: ReasonPropertyUnavailable,
		Message: "property is not available for booking"}
	ErrDateConflict = &Error{Kind: KindBusinessRule, Reason: ReasonDateConflict,
		Message: "requested dates are not available for this property"}
	ErrDuplicateEmail = &Error{Kind: KindBusinessRule, Reason: ReasonDuplicateEmail,
		Message: "an account with this email already exists"}

	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Reason: ReasonInvalidCredentials,
		Message: "invalid email or password"}
	ErrInvalidToken = &Error{Kind: KindUnauthenticated, Reason: ReasonInvalidToken,
		Message: "invalid or expired token"}
	ErrUserVanished = &Error{Kind: KindUnauthenticated, Reason: ReasonUserVanished,
		Message: "account no longer exists"}
)

// KindOf classifies err. Anything that is not an *Error is KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts the *Error from err, classifying unknown errors as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err, "internal error")
}

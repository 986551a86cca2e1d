// Package apperror defines the typed error kinds returned by the booking core.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInfrastructure Kind = iota
	KindValidation
	KindNotFound
	KindDuplicateBooking
	KindCapacityExceeded
	KindExpired
	KindForbidden
	KindLockoutProtection
)

var kindCodes = map[Kind]string{
	KindInfrastructure:    "INFRASTRUCTURE_ERROR",
	KindValidation:        "VALIDATION_ERROR",
	KindNotFound:          "NOT_FOUND",
	KindDuplicateBooking:  "DUPLICATE_BOOKING",
	KindCapacityExceeded:  "CAPACITY_EXCEEDED",
	KindExpired:           "SESSION_EXPIRED",
	KindForbidden:         "FORBIDDEN",
	KindLockoutProtection: "LOCKOUT_PROTECTION",
}

// Code is the machine-readable name of the kind.
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindInfrastructure]
}

func (k Kind) String() string {
	return k.Code()
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error { return New(KindNotFound, message) }
func Forbidden(message string) *Error { return New(KindForbidden, message) }
func Infrastructure(err error) *Error { return Wrap(KindInfrastructure, "storage failure", err) }
func DuplicateBooking(message string) *Error { return New(KindDuplicateBooking, message) }
func CapacityExceeded(message string) *Error { return New(KindCapacityExceeded, message) }
func Expired(message string) *Error { return New(KindExpired, message) }
func LockoutProtection(message string) *Error {
	return New(KindLockoutProtection, message)
}

// KindOf reports the kind of err. Errors that are not *Error are treated as
// infrastructure failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInfrastructure
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

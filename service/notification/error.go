package notification

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Notification service implementations and validations.
var (
	ErrInvalidNotification = errors.New("invalid notification")
	ErrNotFound            = errors.New("notification not found")
)

// Error wraps common Notification errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidNotification indicates if err is ErrInvalidNotification.
func IsInvalidNotification(err error) bool {
	return unwrapError(err) == ErrInvalidNotification
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.err
	}

	return err
}

func wrapError(err error, format string, args ...interface{}) error {
	return &Error{
		err: err,
		msg: fmt.Sprintf(
			errFmt,
			err,
			fmt.Sprintf(format, args...),
		),
	}
}

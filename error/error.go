package error

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// General-purpose errors.
var (
	ErrNotFound = errors.New("not found")
)

// Platform errors.
var (
	ErrDeviceDisabled  = errors.New("device disabled")
	ErrEmptySource     = errors.New("empty source")
	ErrInvalidPlatform = errors.New("invalid platform")
	ErrLockUnavailable = errors.New("lock unavailable")
)

// Error wrapper.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// Unwrap returns the wrapped sentinel.
func (e Error) Unwrap() error {
	return e.err
}

// IsDeviceDisabled indicates if err is ErrDeviceDisabled.
func IsDeviceDisabled(err error) bool {
	return unwrapError(err) == ErrDeviceDisabled
}

// IsEmptySource indicates if err is ErrEmptySource.
func IsEmptySource(err error) bool {
	return unwrapError(err) == ErrEmptySource
}

// IsInvalidPlatform indicates if err is ErrInvalidPlatform.
func IsInvalidPlatform(err error) bool {
	return unwrapError(err) == ErrInvalidPlatform
}

// IsLockUnavailable indicates if err is ErrLockUnavailable.
func IsLockUnavailable(err error) bool {
	return unwrapError(err) == ErrLockUnavailable
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

// Wrap constructs an Error with proper messaging.
func Wrap(err error, format string, args ...interface{}) error {
	return &Error{
		err: err,
		msg: fmt.Sprintf(
			errFmt,
			err, fmt.Sprintf(format, args...),
		),
	}
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.err
	case Error:
		return e.err
	}

	return err
}

package room

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Room service implementations and validations.
var (
	ErrInvalidRoom  = errors.New("invalid room")
	ErrInvalidQuery = errors.New("invalid query")
)

// Error wraps common Room errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidRoom indicates if err is ErrInvalidRoom.
func IsInvalidRoom(err error) bool {
	return unwrapError(err) == ErrInvalidRoom
}

// IsInvalidQuery indicates if err is ErrInvalidQuery.
func IsInvalidQuery(err error) bool {
	return unwrapError(err) == ErrInvalidQuery
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

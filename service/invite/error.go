package invite

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Invite service implementations and validations.
var (
	ErrInvalidInvite = errors.New("invalid invite")
	ErrInvalidQuery  = errors.New("invalid query")
)

// Error wraps common Invite errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidInvite indicates if err is ErrInvalidInvite.
func IsInvalidInvite(err error) bool {
	return unwrapError(err) == ErrInvalidInvite
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

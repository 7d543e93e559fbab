package member

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Member service implementations and validations.
var (
	ErrInvalidMember = errors.New("invalid member")
	ErrInvalidQuery  = errors.New("invalid query")
	ErrMemberExists  = errors.New("member exists")
)

// Error wraps common Member errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidMember indicates if err is ErrInvalidMember.
func IsInvalidMember(err error) bool {
	return unwrapError(err) == ErrInvalidMember
}

// IsInvalidQuery indicates if err is ErrInvalidQuery.
func IsInvalidQuery(err error) bool {
	return unwrapError(err) == ErrInvalidQuery
}

// IsMemberExists indicates if err is ErrMemberExists.
func IsMemberExists(err error) bool {
	return unwrapError(err) == ErrMemberExists
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

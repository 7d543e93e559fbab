package block

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// ErrInvalidBlock is returned when a Block fails validation.
var ErrInvalidBlock = errors.New("invalid block")

// Error wraps common Block errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidBlock indicates if err is ErrInvalidBlock.
func IsInvalidBlock(err error) bool {
	return unwrapError(err) == ErrInvalidBlock
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

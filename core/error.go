package core

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors
var (
	ErrInvalidEntity = errors.New("invalid entity")
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("origin unauthorized")
)

// Invite workflow errors.
var (
	ErrAlreadyResolved   = errors.New("invite already resolved")
	ErrInvalidDecision   = errors.New("invalid decision")
	ErrInviteNotFound    = errors.New("invite not found")
	ErrNoEligibleTargets = errors.New("no eligible targets")
	ErrNoValidTargets    = errors.New("no valid targets")
	ErrNotInviteOwner    = errors.New("not invite owner")
)

// Error is a wraper used to transport core specific errors.
type Error struct {
	Err error
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

// Unwrap returns the transported sentinel.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsAlreadyResolved indicates if err is ErrAlreadyResolved.
func IsAlreadyResolved(err error) bool {
	return unwrapError(err) == ErrAlreadyResolved
}

// IsInvalidDecision indicates if err is ErrInvalidDecision.
func IsInvalidDecision(err error) bool {
	return unwrapError(err) == ErrInvalidDecision
}

// IsInvalidEntity indciates if err is ErrInvalidEntity.
func IsInvalidEntity(err error) bool {
	return unwrapError(err) == ErrInvalidEntity
}

// IsInviteNotFound indicates if err is ErrInviteNotFound.
func IsInviteNotFound(err error) bool {
	return unwrapError(err) == ErrInviteNotFound
}

// IsNoEligibleTargets indicates if err is ErrNoEligibleTargets.
func IsNoEligibleTargets(err error) bool {
	return unwrapError(err) == ErrNoEligibleTargets
}

// IsNoValidTargets indicates if err is ErrNoValidTargets.
func IsNoValidTargets(err error) bool {
	return unwrapError(err) == ErrNoValidTargets
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

// IsNotInviteOwner indicates if err is ErrNotInviteOwner.
func IsNotInviteOwner(err error) bool {
	return unwrapError(err) == ErrNotInviteOwner
}

// IsUnauthorized indicates if err is ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return unwrapError(err) == ErrUnauthorized
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.Err
	}

	return err
}

func wrapError(err error, format string, args ...interface{}) error {
	return &Error{
		Err: err,
		Msg: fmt.Sprintf(
			errFmt,
			err.Error(),
			fmt.Sprintf(format, args...),
		),
	}
}

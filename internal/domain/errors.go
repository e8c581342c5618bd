package domain

import (
	"errors"
	"fmt"
)

// ValidationError is an expected, user-recoverable input error.
// Code identifies the rule for API clients (e.g. duplicate_phone).
type ValidationError struct {
	Field string
	Code  string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("Invalid value for %s.", e.Field)
	}
	return "Invalid input."
}

func (e ValidationError) Unwrap() error { return e.Err }

// NotFoundError names the record kind that is missing (customer, trip, ...).
type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "Not found."
	}
	return fmt.Sprintf("No %s matches the given query.", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ConflictError reports a write that lost against concurrent state.
type ConflictError struct {
	Msg string
	Err error
}

func (e ConflictError) Error() string {
	if e.Msg == "" {
		return "The record was changed by another request."
	}
	return e.Msg
}

func (e ConflictError) Unwrap() error { return e.Err }

type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "You do not have permission to perform this action."
}

type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "Authentication credentials were not provided."
}

// InternalError wraps infrastructure failures; Msg is logged, never shown.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// AsValidation returns the first ValidationError in err's chain.
func AsValidation(err error) (ValidationError, bool) {
	var target ValidationError
	ok := errors.As(err, &target)
	return target, ok
}

func IsValidation(err error) bool {
	_, ok := AsValidation(err)
	return ok
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

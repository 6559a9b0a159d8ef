// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr provides the core errors. Each Error carries a Kind
// which callers may switch on, the wrapped cause, and the HTTP status
// code which best describes that kind, so adapters can render errors
// without knowing about every use case.
package cerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-distinguishable class of an Error.
type Kind string

// Supported error kinds.
const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindValidation        Kind = "validation"
)

// Error wraps Err, classifying it as Kind.
type Error struct {
	Kind           Kind
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Err.Error())
}

// NotFound indicates that a referenced entity does not exist.
func NotFound(err error) *Error {
	return &Error{
		Kind: KindNotFound, Err: err, HTTPStatusCode: http.StatusNotFound,
	}
}

// Conflict indicates that the current state of some entity forbids
// the operation, e.g., an already allocated driver or a duplicate key.
func Conflict(err error) *Error {
	return &Error{
		Kind: KindConflict, Err: err, HTTPStatusCode: http.StatusConflict,
	}
}

// InvalidTransition indicates an illegal status change.
func InvalidTransition(err error) *Error {
	return &Error{
		Kind:           KindInvalidTransition,
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
	}
}

// Validation indicates a malformed input which was rejected before
// any persistence attempt.
func Validation(err error) *Error {
	return &Error{
		Kind:           KindValidation,
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
	}
}

// Is reports whether err wraps an *Error of the k kind.
func Is(err error, k Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}

// NotFoundf formats a NotFound error like fmt.Errorf.
func NotFoundf(format string, args ...any) *Error {
	return NotFound(fmt.Errorf(format, args...))
}

// Conflictf formats a Conflict error like fmt.Errorf.
func Conflictf(format string, args ...any) *Error {
	return Conflict(fmt.Errorf(format, args...))
}

// Validationf formats a Validation error like fmt.Errorf.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Errorf(format, args...))
}

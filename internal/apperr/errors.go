// Package apperr holds the sentinel errors shared across coursebook packages.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("content unavailable")
	ErrInvalidBundle   = errors.New("invalid course bundle")
	ErrDuplicateCourse = errors.New("duplicate course id")
	ErrInvalidInput    = errors.New("invalid input")
)

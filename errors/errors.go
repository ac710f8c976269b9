// Package errors provides curated, de-duplicating errors: a small set of
// named message templates that callers fill with values rather than
// hand-writing fmt.Errorf strings at every call site. Curated errors nest -
// wrapping one curated error's message inside another's values is how the
// package forms a chain without repeating the inner message twice, which
// Error() collapses back out.
package errors

import (
	"fmt"
	"strings"
)

// Values holds the arguments applied to a curated message template.
type Values []interface{}

type curated struct {
	message string
	values  Values
}

// Errorf builds a new curated error from one of the named message
// templates in this package and its arguments.
func Errorf(message string, values ...interface{}) error {
	return curated{message: message, values: values}
}

// Error renders the message and de-duplicates adjacent repeated segments
// that arise when a curated error wraps another curated error carrying the
// same head.
func (e curated) Error() string {
	s := fmt.Errorf(e.message, e.values...).Error()
	parts := strings.SplitN(s, ": ", 3)
	if len(parts) > 1 && parts[0] == parts[1] {
		return strings.Join(parts[1:], ": ")
	}
	return strings.Join(parts, ": ")
}

// Head returns the template string behind err, or err.Error() if err is not
// a curated error.
func Head(err error) string {
	if e, ok := err.(curated); ok {
		return e.message
	}
	return err.Error()
}

// Is reports whether err is a curated error built from the given template.
func Is(err error, message string) bool {
	if err == nil {
		return false
	}
	e, ok := err.(curated)
	return ok && e.message == message
}

// IsAny reports whether err is a curated error at all.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(curated)
	return ok
}

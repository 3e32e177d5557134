package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies an error. Codes are themselves errors so they can be
// returned bare or matched with Is anywhere in a chain.
type Code string

func (c Code) Error() string { return string(c) }

// Error attaches a Code to a cause that carries a stack trace.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err == nil:
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	code, ok := target.(Code)
	return ok && e.Code == code
}

func coded(code Code, err error) error {
	return &Error{Code: code, Err: err}
}

func New(code Code, message string) error {
	return coded(code, errors.New(message))
}

func Newf(code Code, format string, args ...any) error {
	return coded(code, errors.Errorf(format, args...))
}

// PureNew is a plain error without code or stack.
func PureNew(message string) error {
	return stderrors.New(message)
}

// Wrap returns nil for a nil err.
func Wrap(code Code, err error, message string) error {
	if err == nil {
		return nil
	}
	return coded(code, errors.Wrap(err, message))
}

// Wrapf returns nil for a nil err.
func Wrapf(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return coded(code, errors.Wrapf(err, format, args...))
}

// CodeOf returns the code of the outermost coded error in the chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code, true
	}
	var code Code
	if stderrors.As(err, &code) {
		return code, true
	}
	return "", false
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is the generic form of errors.As.
func As[T error](err error) (*T, bool) {
	var target T
	if stderrors.As(err, &target) {
		return &target, true
	}
	return nil, false
}

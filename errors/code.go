package errors

import (
	stderrors "errors"
)

const (
	// SuccessCode is returned for a nil error.
	SuccessCode uint32 = 0

	// All unclassified errors that do not wrap a registered root error
	// are clubbed under an internal error code and a generic message.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

type coder interface {
	Code() uint32
}

// Code returns the code of the registered root error that given error wraps.
// An error that does not wrap any registered error is internal (code 1).
func Code(err error) uint32 {
	if isNilErr(err) {
		return SuccessCode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// Redact replaces all errors that do not wrap a registered root error, as
// well as recovered panics, with a generic internal error instance. Use it
// before exposing an error to a client.
//
// This is a no-operation function when running in debug mode.
func Redact(err error, debug bool) error {
	if debug || isNilErr(err) {
		return err
	}
	if ErrPanic.Is(err) || Code(err) == internalCode {
		return stderrors.New(internalLog)
	}
	return err
}

package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If none or only one non nil error was provided, the result is nil or that
// error respectively. Otherwise a collection of errors is returned. Nested
// collections are flattened.
func Append(errs ...error) error {
	var collected []error
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(*multiErr); ok {
			collected = append(collected, m.errs...)
			continue
		}
		collected = append(collected, e)
	}

	switch len(collected) {
	case 0:
		return nil
	case 1:
		return collected[0]
	default:
		return &multiErr{errs: collected}
	}
}

// unpacker is implemented by errors that group more than one error instance.
type unpacker interface {
	Unpack() []error
}

type multiErr struct {
	errs []error
}

// Unpack implements the unpacker interface.
func (e *multiErr) Unpack() []error {
	return e.errs
}

func (e *multiErr) Error() string {
	points := make([]string, len(e.errs))
	for i, err := range e.errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n",
		len(e.errs), strings.Join(points, "\n\t"))
}

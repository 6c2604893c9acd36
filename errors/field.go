package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Field wraps the original error with the name of the attribute that failed
// validation. It returns nil if the provided error is nil.
//
// Use Go naming for the field name, for example Amount or LockPeriod. Nested
// fields use dot notation, for example Members.2.Address.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{
		parent: err,
		field:  fieldName,
		desc:   description,
	}
}

// AppendField clubs together the given error(s) with a field error.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

func (err *fieldError) Cause() error {
	return err.parent
}

func (err *fieldError) Field() string {
	return err.field
}

// FieldErrors returns all errors created for the given field name.
func FieldErrors(err error, fieldName string) []error {
	if errIsNil(err) {
		return nil
	}
	var res []error
	for err != nil {
		if f, ok := err.(*fieldError); ok && f.field == fieldName {
			return append(res, err)
		}
		if m, ok := err.(multiErr); ok {
			for _, e := range m {
				res = append(res, FieldErrors(e, fieldName)...)
			}
			return res
		}
		c, ok := err.(causer)
		if !ok {
			return res
		}
		err = c.Cause()
	}
	return res
}

// Append clubs together all non nil errors. It returns nil when every given
// error is nil and the error itself when only one is not nil.
func Append(errs ...error) error {
	var m multiErr
	for _, e := range errs {
		if errIsNil(e) {
			continue
		}
		if other, ok := e.(multiErr); ok {
			m = append(m, other...)
			continue
		}
		m = append(m, e)
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	default:
		return m
	}
}

type multiErr []error

func (m multiErr) Error() string {
	msgs := make([]string, len(m))
	for i, e := range m {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(m), strings.Join(msgs, "; "))
}

// ABCICode reports the code of the first error, so that a multi error of
// registered errors is not hidden as internal.
func (m multiErr) ABCICode() uint32 {
	return abciCode(m[0])
}

// Is returns true if any of the clubbed errors is of the given kind.
func (m multiErr) Is(kind *Error) bool {
	for _, e := range m {
		if kind.Is(e) {
			return true
		}
	}
	return false
}

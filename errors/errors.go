package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is returned whenever the signer of a message does
	// not match the principal that the operation requires.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is returned when an entity that an operation depends on
	// does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrMsg is returned when a message cannot be decoded or handled.
	ErrMsg = Register(4, "invalid message")

	// ErrModel is returned when a model fails validation and cannot be
	// persisted.
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when an entity with the same unique key
	// already exists.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman is returned when the application reaches a code path that
	// must never be reached.
	ErrHuman = Register(7, "coding error")

	// ErrEmpty is returned when a required value is missing.
	ErrEmpty = Register(8, "value is empty")

	// ErrState is returned when an entity is not in the state required by
	// the operation.
	ErrState = Register(9, "invalid state")

	// ErrType is returned when a value is not of the expected type.
	ErrType = Register(10, "invalid type")

	// ErrInsufficientAmount is returned when a balance, a collateral value
	// or a voting power is below the required amount.
	ErrInsufficientAmount = Register(11, "insufficient amount")

	// ErrAmount is returned when an amount is zero, negative or otherwise
	// malformed.
	ErrAmount = Register(12, "invalid amount")

	// ErrInput is returned for general input validation problems.
	ErrInput = Register(13, "invalid input")

	// ErrExpired is returned when a deadline has passed.
	ErrExpired = Register(14, "expired")

	// ErrLocked is returned when an operation is attempted before a time
	// lock is released.
	ErrLocked = Register(15, "still locked")

	// ErrOverflow is returned when a computation result exceeds the range
	// of its type.
	ErrOverflow = Register(16, "value overflow")

	// ErrCurrency is returned when coins of different tickers are mixed or
	// a ticker is not supported.
	ErrCurrency = Register(17, "invalid currency")

	// ErrUnsupported is returned for operations that are intentionally not
	// provided.
	ErrUnsupported = Register(18, "unsupported operation")

	// ErrDatabase is returned when the underlying storage fails.
	ErrDatabase = Register(19, "database")

	// ErrIteratorDone is returned by an iterator that has no more items.
	ErrIteratorDone = Register(20, "iterator done")

	// ErrRejected is the result code of a transaction that completed and
	// persisted its state change, but whose outcome was a rejection.
	ErrRejected = Register(21, "rejected")

	// ErrPanic is only set when a panic was recovered, so that potentially
	// sensitive system information can be redacted.
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Common root errors are declared in this package. Extensions may declare
// custom codes; no code may be used twice and an attempt to reuse one panics.
//
// Use this function only during the program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes keeps track of registered codes. Code 1 is reserved for internal
// errors that do not provide a code.
var usedCodes = map[uint32]*Error{
	1: nil,
}

// Error is a root error. Every error returned during runtime should wrap one
// of the registered root errors so that it can be tested for with Is and
// returned to the client with a stable ABCI code.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// ABCICode returns the code reported to the client.
func (e Error) ABCICode() uint32 {
	return e.code
}

// New returns a new error with this root error as the cause.
//
//	e.New("my description")
//
// is equal to
//
//	Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is checks if the given error is of this kind, unwrapping it using the
// Cause method when available.
func (kind *Error) Is(err error) bool {
	// Comparing with a nil implementation of an error requires reflect.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}
		if m, ok := err.(multiErr); ok {
			return m.Is(kind)
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends the given error with additional information. A nil error
// results in nil, so the result of a function call can be wrapped without an
// if statement.
//
// Errors that do not provide an ABCICode method are reported as internal.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// Attach the stack trace only once, at the innermost wrap.
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf is Wrap with formatting capabilities.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the full stack trace when %+v is used.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n", e.msg)
		if f, ok := e.parent.(fmt.Formatter); ok {
			f.Format(s, verb)
			return
		}
		fmt.Fprintf(s, "%v", e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover captures a panic and stops its propagation. The panic is turned
// into an ErrPanic instance assigned to the given error. Call it using defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType augments an error with the type of the given object.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

type causer interface {
	Cause() error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first found stack trace frame carried by given
// error or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

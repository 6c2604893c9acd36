/*
Package errors implements the error taxonomy of the application.

Every failure returned by a handler wraps one of the registered root errors
declared in this package. The root error decides the ABCI code that the
client receives, while the wrapping adds context:

	return errors.Wrapf(errors.ErrLocked, "unlocks at %s", dep.UnlockTime)

Test for a kind with the Is method of the root error:

	if errors.ErrNotFound.Is(err) { ... }

A stack trace is attached at the innermost wrap. Use %+v to print it.
Message validation uses Field and Append to report all invalid attributes
at once.
*/
package errors

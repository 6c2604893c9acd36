package sigs

import (
	"context"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/x"
)

type contextKey int

const (
	contextKeySigners contextKey = iota
)

// withSigners is private, only this module can add a signer.
func withSigners(ctx arabica.Context, signers []arabica.Condition) arabica.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate reveals the signers verified by the Decorator.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current Context. May be empty.
func (a Authenticate) GetConditions(ctx arabica.Context) []arabica.Condition {
	val, _ := ctx.Value(contextKeySigners).([]arabica.Condition)
	return val
}

// HasAddress returns true if the address signed the current Context.
func (a Authenticate) HasAddress(ctx arabica.Context, addr arabica.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

package arbtest

import (
	"context"
	"fmt"

	"github.com/arabica-labs/arabica"
)

// Auth is a mock implementing the x.Authenticator interface.
//
// This structure authenticates any of the referenced conditions. Both
// Signer and Signers are considered every time.
type Auth struct {
	// Signer represents an authentication of a single signer.
	Signer arabica.Condition

	// Signers represents an authentication of multiple signers.
	Signers []arabica.Condition
}

func (a *Auth) GetConditions(arabica.Context) []arabica.Condition {
	if a.Signer != nil {
		return append(a.Signers, a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx arabica.Context, addr arabica.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing the x.Authenticator interface that stores
// and retrieves conditions using the context. A single CtxAuth instance can
// authenticate a different signer for every request.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context.
	Key string
}

// SetConditions returns a context authenticating the given conditions.
func (a *CtxAuth) SetConditions(ctx arabica.Context, conds ...arabica.Condition) arabica.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx arabica.Context) []arabica.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]arabica.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []arabica.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx arabica.Context, addr arabica.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

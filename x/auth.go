package x

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of handlers,
// so we can plug in another authentication system, rather than hard-coding
// x/sigs for all extensions.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled.
	GetConditions(arabica.Context) []arabica.Condition
	// HasAddress checks if any condition matches this address.
	HasAddress(arabica.Context, arabica.Address) bool
}

// MultiAuth chains together many Authenticators into one.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators.
func (m MultiAuth) GetConditions(ctx arabica.Context) []arabica.Condition {
	var res []arabica.Condition
	for _, impl := range m.impls {
		res = append(res, impl.GetConditions(ctx)...)
	}
	return res
}

// HasAddress returns true iff any Authenticator supports this.
func (m MultiAuth) HasAddress(ctx arabica.Context, addr arabica.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the GetConditions method of any Authenticator.
func GetAddresses(ctx arabica.Context, auth Authenticator) []arabica.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]arabica.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// MainSigner returns the first permission if any, otherwise nil.
func MainSigner(ctx arabica.Context, auth Authenticator) arabica.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// MainSignerAddress returns the address of the main signer. ErrUnauthorized
// is returned when the transaction is not signed.
func MainSignerAddress(ctx arabica.Context, auth Authenticator) (arabica.Address, error) {
	signer := MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return signer.Address(), nil
}

// HasAllAddresses returns true if all elements in required are also in
// context.
func HasAllAddresses(ctx arabica.Context, auth Authenticator, required []arabica.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// RequireAddress returns ErrUnauthorized unless the address is among the
// authenticated ones. The what argument names the required role.
func RequireAddress(ctx arabica.Context, auth Authenticator, addr arabica.Address, what string) error {
	if len(addr) == 0 || !auth.HasAddress(ctx, addr) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s signature required", what)
	}
	return nil
}

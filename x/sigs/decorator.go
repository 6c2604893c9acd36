package sigs

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
)

const signatureVerifyCost = 500

// Decorator verifies the signatures and adds them to the context.
type Decorator struct {
	allowMissingSigs bool
}

var _ arabica.Decorator = Decorator{}

// NewDecorator returns a default authentication decorator, which appends the
// chain id before checking the signature, and requires at least one
// signature to be present.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs allows us to pass along items with no signatures.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

// Check verifies signatures before calling down the stack.
func (d Decorator) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx, next arabica.Checker) (*arabica.CheckResult, error) {
	ctx, signers, err := d.withSigners(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	// Only valid signatures are charged, invalid ones fail earlier.
	res.GasPayment += int64(signers * signatureVerifyCost)
	return res, nil
}

// Deliver verifies signatures before calling down the stack.
func (d Decorator) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx, next arabica.Deliverer) (*arabica.DeliverResult, error) {
	ctx, _, err := d.withSigners(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, tx)
}

func (d Decorator) withSigners(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (arabica.Context, int, error) {
	stx, ok := tx.(SignedTx)
	if !ok {
		if d.allowMissingSigs {
			return ctx, 0, nil
		}
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "transaction cannot be signed")
	}
	signers, err := VerifyTxSignatures(db, stx, arabica.GetChainID(ctx))
	if err != nil {
		return nil, 0, errors.Wrap(err, "cannot verify signatures")
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return withSigners(ctx, signers), len(signers), nil
}

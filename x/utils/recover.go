package utils

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
)

// Recovery is a decorator to recover from panics in transactions, so we can
// log them as errors.
type Recovery struct{}

var _ arabica.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator.
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors.
func (r Recovery) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx, next arabica.Checker) (_ *arabica.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, db, tx)
}

// Deliver turns panics into normal errors.
func (r Recovery) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx, next arabica.Deliverer) (_ *arabica.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, db, tx)
}

package app

import (
	"reflect"

	"github.com/arabica-labs/arabica"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler.
type Decorators struct {
	chain []arabica.Decorator
}

/*
ChainDecorators takes a chain of decorators, and upon adding a final
Handler (often a Router), returns a Handler that will execute this whole
stack.

	app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		sigs.NewDecorator(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(
		router,
	)
*/
func ChainDecorators(chain ...arabica.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain.
func (d Decorators) Chain(chain ...arabica.Decorator) Decorators {
	chain = cutoffNil(chain)
	newChain := append(append([]arabica.Decorator{}, d.chain...), chain...)
	return Decorators{newChain}
}

// cutoffNil removes all nil values from the given slice in place.
func cutoffNil(ds []arabica.Decorator) []arabica.Decorator {
	var cutoff int
	for i := 0; i < len(ds); i++ {
		ds[i-cutoff] = ds[i]
		if ds[i] == nil || (reflect.ValueOf(ds[i]).Kind() == reflect.Ptr && reflect.ValueOf(ds[i]).IsNil()) {
			cutoff++
		}
	}
	return ds[:len(ds)-cutoff]
}

// WithHandler resolves the stack and returns a concrete Handler that will
// pass through the chain of decorators before calling the final Handler.
func (d Decorators) WithHandler(h arabica.Handler) arabica.Handler {
	// The top of the chain is executed first.
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one step executing a decorator around a specific Handler.
type step struct {
	d    arabica.Decorator
	next arabica.Handler
}

var _ arabica.Handler = step{}

func (s step) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	return s.d.Check(ctx, db, tx, s.next)
}

func (s step) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	return s.d.Deliver(ctx, db, tx, s.next)
}

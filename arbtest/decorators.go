package arbtest

import "github.com/arabica-labs/arabica"

// Decorate wraps the handler with a single decorator and returns it as a
// handler. It is a minimal version of app.ChainDecorators for tests.
func Decorate(h arabica.Handler, d arabica.Decorator) arabica.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn arabica.Handler
	dc arabica.Decorator
}

func (d *decoratedHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}

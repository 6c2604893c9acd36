package oracle

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/x"
)

const setPriceCost int64 = 50

// RegisterRoutes registers the price handler.
func RegisterRoutes(r arabica.Registry, auth x.Authenticator) {
	r.Handle(&SetPriceMsg{}, NewSetPriceHandler(auth, NewController()))
}

// RegisterQuery exposes the prices as "/prices".
func RegisterQuery(qr arabica.QueryRouter) {
	NewPriceBucket().Register(qr)
}

// SetPriceHandler stores prices posted by the oracle.
type SetPriceHandler struct {
	auth    x.Authenticator
	control BaseController
}

var _ arabica.Handler = SetPriceHandler{}

// NewSetPriceHandler returns a handler for SetPriceMsg.
func NewSetPriceHandler(auth x.Authenticator, control BaseController) SetPriceHandler {
	return SetPriceHandler{auth: auth, control: control}
}

func (h SetPriceHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: setPriceCost}, nil
}

func (h SetPriceHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	p := Price{Price: msg.Price, UpdatedAt: now}
	if _, err := h.control.prices.Put(db, []byte(msg.Ticker), &p); err != nil {
		return nil, errors.Wrap(err, "save price")
	}
	arabica.GetLogger(ctx).Info("price updated", "ticker", msg.Ticker, "price", msg.Price.String())
	return &arabica.DeliverResult{}, nil
}

func (h SetPriceHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*SetPriceMsg, error) {
	var msg SetPriceMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	for _, addr := range x.GetAddresses(ctx, h.auth) {
		ok, err := h.control.IsOracle(db, addr)
		if err != nil {
			return nil, err
		}
		if ok {
			return &msg, nil
		}
	}
	return nil, errors.Wrap(errors.ErrUnauthorized, "oracle signature required")
}

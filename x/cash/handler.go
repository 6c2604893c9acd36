package cash

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/x"
)

const sendTxCost int64 = 100

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r arabica.Registry, auth x.Authenticator, control Controller) {
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
}

// RegisterQuery will register the wallets bucket as "/wallets".
func RegisterQuery(qr arabica.QueryRouter) {
	NewBucket().Register(qr)
}

// SendHandler will handle sending coins.
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ arabica.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg.
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and returns the cost of
// executing it.
func (h SendHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the tokens from source to receiver if all preconditions are
// met.
func (h SendHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(db, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &arabica.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx arabica.Context, tx arabica.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &msg, nil
}

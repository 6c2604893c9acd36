package ledger

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/gconf"
	"github.com/arabica-labs/arabica/x"
)

const (
	transferCost int64 = 50
	accrueCost   int64 = 20
	tokenPath          = "/token"
)

// RegisterRoutes registers the ledger handlers.
func RegisterRoutes(r arabica.Registry, auth x.Authenticator, ctrl BaseController) {
	r.Handle(&TransferMsg{}, &TransferHandler{auth: auth, ctrl: ctrl})
	r.Handle(&BurnMsg{}, &BurnHandler{auth: auth, ctrl: ctrl})
	r.Handle(&AccrueMsg{}, &AccrueHandler{ctrl: ctrl})
	r.Handle(&UpdateRateMsg{}, &UpdateRateHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ApproveMsg{}, unsupportedHandler{what: "approve"})
	r.Handle(&TransferFromMsg{}, unsupportedHandler{what: "transfer_from"})
}

// RegisterQuery exposes "/balances", "/supply" and the token metadata
// under "/token".
func RegisterQuery(qr arabica.QueryRouter) {
	NewBalanceBucket().Register(qr)
	NewSupplyBucket().Register(qr)
	qr.Register(tokenPath, tokenQuery{})
}

// TransferHandler moves tokens between holders.
type TransferHandler struct {
	auth x.Authenticator
	ctrl BaseController
}

var _ arabica.Handler = (*TransferHandler)(nil)

func (h *TransferHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: transferCost}, nil
}

func (h *TransferHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, sender, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Transfer(ctx, db, sender, msg.Recipient, msg.Amount); err != nil {
		return nil, err
	}
	return &arabica.DeliverResult{}, nil
}

func (h *TransferHandler) validate(ctx arabica.Context, tx arabica.Tx) (*TransferMsg, arabica.Address, error) {
	var msg TransferMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	sender, err := x.MainSignerAddress(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, sender, nil
}

// BurnHandler destroys tokens of the signer.
type BurnHandler struct {
	auth x.Authenticator
	ctrl BaseController
}

var _ arabica.Handler = (*BurnHandler)(nil)

func (h *BurnHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: transferCost}, nil
}

func (h *BurnHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, holder, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.burn(db, holder, msg.Amount); err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("tokens burned", "holder", holder, "amount", msg.Amount.String())
	return &arabica.DeliverResult{}, nil
}

func (h *BurnHandler) validate(ctx arabica.Context, tx arabica.Tx) (*BurnMsg, arabica.Address, error) {
	var msg BurnMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	holder, err := x.MainSignerAddress(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, holder, nil
}

// AccrueHandler folds pending yield into the principal of a holder.
type AccrueHandler struct {
	ctrl BaseController
}

var _ arabica.Handler = (*AccrueHandler)(nil)

func (h *AccrueHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	var msg AccrueMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &arabica.CheckResult{GasAllocated: accrueCost}, nil
}

func (h *AccrueHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	var msg AccrueMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	increase, err := h.ctrl.Accrue(ctx, db, msg.Holder)
	if err != nil {
		return nil, err
	}
	return &arabica.DeliverResult{Log: "accrued " + increase.String()}, nil
}

// UpdateRateHandler changes the base rate, administrator only.
type UpdateRateHandler struct {
	auth x.Authenticator
	ctrl BaseController
}

var _ arabica.Handler = (*UpdateRateHandler)(nil)

func (h *UpdateRateHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{}, nil
}

func (h *UpdateRateHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.SetBaseRate(db, msg.BaseRate); err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("base rate updated", "rate", msg.BaseRate)
	return &arabica.DeliverResult{}, nil
}

func (h *UpdateRateHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*UpdateRateMsg, error) {
	var msg UpdateRateMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if err := x.RequireAddress(ctx, h.auth, conf.Admin, "admin"); err != nil {
		return nil, err
	}
	return &msg, nil
}

type unsupportedHandler struct {
	what string
}

func (h unsupportedHandler) Check(arabica.Context, arabica.KVStore, arabica.Tx) (*arabica.CheckResult, error) {
	return nil, errors.Wrap(errors.ErrUnsupported, h.what)
}

func (h unsupportedHandler) Deliver(arabica.Context, arabica.KVStore, arabica.Tx) (*arabica.DeliverResult, error) {
	return nil, errors.Wrap(errors.ErrUnsupported, h.what)
}

// TokenInfo is the token metadata returned by the "/token" query.
type TokenInfo struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type tokenQuery struct{}

func (tokenQuery) Query(db arabica.ReadOnlyKVStore, mod string, data []byte) ([]arabica.Model, error) {
	var conf Configuration
	switch err := gconf.Load(db, pkg, &conf); {
	case errors.ErrNotFound.Is(err):
		return nil, nil
	case err != nil:
		return nil, err
	}
	raw, err := codec.JSON(TokenInfo{Name: conf.Name, Symbol: conf.Symbol, Decimals: Decimals})
	if err != nil {
		return nil, err
	}
	return []arabica.Model{arabica.Pair([]byte(conf.Symbol), raw)}, nil
}

package vault

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/x"
)

const (
	depositCost  int64 = 300
	withdrawCost int64 = 300
)

// RegisterRoutes registers the vault handlers.
func RegisterRoutes(r arabica.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(&DepositMsg{}, &DepositHandler{auth: auth, ctrl: ctrl})
	r.Handle(&WithdrawMsg{}, &WithdrawHandler{auth: auth, ctrl: ctrl})
	r.Handle(&EmergencyWithdrawMsg{}, &EmergencyWithdrawHandler{auth: auth, ctrl: ctrl})
	r.Handle(&AddSupportedAssetMsg{}, &AddSupportedAssetHandler{auth: auth, ctrl: ctrl})
}

// RegisterQuery exposes "/vaults", "/deposits" and "/holdings". Deposits
// of a single vault are listed with a prefix query on "<vault>/".
func RegisterQuery(qr arabica.QueryRouter) {
	NewVaultBucket().Register(qr)
	NewDepositBucket().Register(qr)
	NewHoldingBucket().Register(qr)
}

// DepositHandler locks an asset of the signer.
type DepositHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*DepositHandler)(nil)

func (h *DepositHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: depositCost}, nil
}

func (h *DepositHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, user, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	dep, err := h.ctrl.Deposit(ctx, db, msg.Vault, user, msg.Asset, msg.LockPeriod)
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("deposit created",
		"vault", msg.Vault, "user", user, "value", dep.Amount.String(), "unlock", dep.UnlockTime)
	return &arabica.DeliverResult{Data: DepositKey(msg.Vault, user)}, nil
}

func (h *DepositHandler) validate(ctx arabica.Context, tx arabica.Tx) (*DepositMsg, arabica.Address, error) {
	var msg DepositMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	user, err := x.MainSignerAddress(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, user, nil
}

// WithdrawHandler releases the deposit of the signer.
type WithdrawHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*WithdrawHandler)(nil)

func (h *WithdrawHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	msg, user, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	dep, err := h.ctrl.DepositOf(db, msg.Vault, user)
	if err != nil {
		return nil, err
	}
	if !arabica.IsExpired(ctx, dep.UnlockTime) {
		return nil, errors.Wrapf(errors.ErrLocked, "locked until %s", dep.UnlockTime)
	}
	return &arabica.CheckResult{GasAllocated: withdrawCost}, nil
}

func (h *WithdrawHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, user, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	released, err := h.ctrl.Withdraw(ctx, db, msg.Vault, user)
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("deposit withdrawn", "vault", msg.Vault, "user", user, "released", released)
	return releasedResult(released)
}

func (h *WithdrawHandler) validate(ctx arabica.Context, tx arabica.Tx) (*WithdrawMsg, arabica.Address, error) {
	var msg WithdrawMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	user, err := x.MainSignerAddress(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, user, nil
}

// EmergencyWithdrawHandler releases a deposit before unlock, administrator
// only.
type EmergencyWithdrawHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*EmergencyWithdrawHandler)(nil)

func (h *EmergencyWithdrawHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: withdrawCost}, nil
}

func (h *EmergencyWithdrawHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	released, err := h.ctrl.EmergencyWithdraw(ctx, db, msg.Vault, msg.User)
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("emergency withdraw", "vault", msg.Vault, "user", msg.User, "released", released)
	return releasedResult(released)
}

func (h *EmergencyWithdrawHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*EmergencyWithdrawMsg, error) {
	var msg EmergencyWithdrawMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireAdmin(ctx, db, h.auth); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AddSupportedAssetHandler adds a ticker to a priced vault, administrator
// only.
type AddSupportedAssetHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ arabica.Handler = (*AddSupportedAssetHandler)(nil)

func (h *AddSupportedAssetHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{}, nil
}

func (h *AddSupportedAssetHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.AddAsset(db, msg.Vault, msg.Ticker); err != nil {
		return nil, err
	}
	return &arabica.DeliverResult{}, nil
}

func (h *AddSupportedAssetHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*AddSupportedAssetMsg, error) {
	var msg AddSupportedAssetMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireAdmin(ctx, db, h.auth); err != nil {
		return nil, err
	}
	v, err := h.ctrl.Vault(db, msg.Vault)
	if err != nil {
		return nil, err
	}
	if v.Kind != Priced {
		return nil, errors.Wrapf(errors.ErrState, "%s vault accepts a single asset", v.Kind)
	}
	return &msg, nil
}

func requireAdmin(ctx arabica.Context, db arabica.KVStore, auth x.Authenticator) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	return x.RequireAddress(ctx, auth, conf.Admin, "admin")
}

func releasedResult(released coin.Coin) (*arabica.DeliverResult, error) {
	raw, err := codec.Marshal(released)
	if err != nil {
		return nil, err
	}
	return &arabica.DeliverResult{Data: raw}, nil
}

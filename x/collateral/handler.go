package collateral

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/gconf"
	"github.com/arabica-labs/arabica/x"
	"github.com/arabica-labs/arabica/x/oracle"
)

const (
	createAssetCost int64 = 200
	updateAssetCost int64 = 100
	activeQueryPath       = "/assets/active"
)

// Committee tells whether an address is a committee member.
type Committee interface {
	IsMember(db arabica.ReadOnlyKVStore, addr arabica.Address) (bool, error)
}

// RegisterRoutes registers all registry handlers.
func RegisterRoutes(r arabica.Registry, auth x.Authenticator, ctrl BaseController, committee Committee, prices oracle.Controller) {
	r.Handle(&CreateAssetMsg{}, &CreateAssetHandler{auth: auth, ctrl: ctrl})
	r.Handle(&RegisterCollateralMsg{}, &RegisterCollateralHandler{auth: auth, ctrl: ctrl})
	r.Handle(&LiquidateMsg{}, &LiquidateHandler{auth: auth, ctrl: ctrl, committee: committee})
	r.Handle(&UpdateValuationMsg{}, &UpdateValuationHandler{auth: auth, ctrl: ctrl, oracle: prices})
	r.Handle(&MarkExpiredMsg{}, &MarkExpiredHandler{auth: auth, ctrl: ctrl})
}

// RegisterQuery exposes all assets as "/assets" and the active ones as
// "/assets/active".
func RegisterQuery(ctrl BaseController) arabica.QueryRegister {
	return func(qr arabica.QueryRouter) {
		ctrl.assets.Register(qr)
		qr.Register(activeQueryPath, activeQuery{ctrl: ctrl})
	}
}

// CreateAssetHandler stores a new asset owned by the signer.
type CreateAssetHandler struct {
	auth x.Authenticator
	ctrl BaseController
}

var _ arabica.Handler = (*CreateAssetHandler)(nil)

func (h *CreateAssetHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: createAssetCost}, nil
}

func (h *CreateAssetHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	id, err := h.ctrl.Register(db, &Asset{
		Owner:        owner,
		BatchID:      msg.BatchID,
		QualityGrade: msg.QualityGrade,
		QuantityKg:   msg.QuantityKg,
		Value:        msg.Value,
		FarmLocation: msg.FarmLocation,
		HarvestDate:  msg.HarvestDate,
		CreatedAt:    now,
		Status:       Active,
	})
	if err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("asset created", "id", id, "batch", msg.BatchID)
	return &arabica.DeliverResult{Data: id}, nil
}

func (h *CreateAssetHandler) validate(ctx arabica.Context, tx arabica.Tx) (*CreateAssetMsg, arabica.Address, error) {
	var msg CreateAssetMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	owner, err := x.MainSignerAddress(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, owner, nil
}

// RegisterCollateralHandler links an asset to a loan.
type RegisterCollateralHandler struct {
	auth x.Authenticator
	ctrl BaseController
}

var _ arabica.Handler = (*RegisterCollateralHandler)(nil)

func (h *RegisterCollateralHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: updateAssetCost}, nil
}

func (h *RegisterCollateralHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, asset, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	asset.LoanID = msg.LoanID
	if _, err := h.ctrl.assets.Put(db, msg.AssetID, asset); err != nil {
		return nil, err
	}
	return &arabica.DeliverResult{}, nil
}

func (h *RegisterCollateralHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*RegisterCollateralMsg, *Asset, error) {
	var msg RegisterCollateralMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	asset, err := h.ctrl.Get(db, msg.AssetID)
	if err != nil {
		return nil, nil, err
	}
	if err := x.RequireAddress(ctx, h.auth, asset.Owner, "owner"); err != nil {
		return nil, nil, err
	}
	if asset.Status != Active {
		return nil, nil, errors.Wrapf(errors.ErrState, "asset is %s", asset.Status)
	}
	if len(asset.LoanID) != 0 {
		return nil, nil, errors.Wrap(errors.ErrDuplicate, "asset already secures a loan")
	}
	ok, err := h.ctrl.CheckRatio(db, msg.LoanAmount, asset.Value)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errors.Wrap(errors.ErrInsufficientAmount, "collateral ratio not satisfied")
	}
	return &msg, asset, nil
}

// LiquidateHandler marks an asset liquidated, committee only.
type LiquidateHandler struct {
	auth      x.Authenticator
	ctrl      BaseController
	committee Committee
}

var _ arabica.Handler = (*LiquidateHandler)(nil)

func (h *LiquidateHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: updateAssetCost}, nil
}

func (h *LiquidateHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.SetStatus(db, msg.AssetID, Liquidated); err != nil {
		return nil, err
	}
	arabica.GetLogger(ctx).Info("asset liquidated", "id", msg.AssetID)
	return &arabica.DeliverResult{}, nil
}

func (h *LiquidateHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*LiquidateMsg, error) {
	var msg LiquidateMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	for _, addr := range x.GetAddresses(ctx, h.auth) {
		ok, err := h.committee.IsMember(db, addr)
		if err != nil {
			return nil, err
		}
		if ok {
			return &msg, nil
		}
	}
	return nil, errors.Wrap(errors.ErrUnauthorized, "not a committee member")
}

// UpdateValuationHandler changes the value of an asset, oracle only.
type UpdateValuationHandler struct {
	auth   x.Authenticator
	ctrl   BaseController
	oracle oracle.Controller
}

var _ arabica.Handler = (*UpdateValuationHandler)(nil)

func (h *UpdateValuationHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: updateAssetCost}, nil
}

func (h *UpdateValuationHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, asset, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	asset.Value = msg.Value
	if _, err := h.ctrl.assets.Put(db, msg.AssetID, asset); err != nil {
		return nil, err
	}
	return &arabica.DeliverResult{}, nil
}

func (h *UpdateValuationHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*UpdateValuationMsg, *Asset, error) {
	var msg UpdateValuationMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer, err := x.MainSignerAddress(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	if ok, err := h.oracle.IsOracle(db, signer); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "oracle signature required")
	}
	asset, err := h.ctrl.Get(db, msg.AssetID)
	if err != nil {
		return nil, nil, err
	}
	if asset.Status != Active {
		return nil, nil, errors.Wrapf(errors.ErrState, "asset is %s", asset.Status)
	}
	return &msg, asset, nil
}

// MarkExpiredHandler marks an asset expired, administrator only.
type MarkExpiredHandler struct {
	auth x.Authenticator
	ctrl BaseController
}

var _ arabica.Handler = (*MarkExpiredHandler)(nil)

func (h *MarkExpiredHandler) Check(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &arabica.CheckResult{GasAllocated: updateAssetCost}, nil
}

func (h *MarkExpiredHandler) Deliver(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*arabica.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.SetStatus(db, msg.AssetID, Expired); err != nil {
		return nil, err
	}
	return &arabica.DeliverResult{}, nil
}

func (h *MarkExpiredHandler) validate(ctx arabica.Context, db arabica.KVStore, tx arabica.Tx) (*MarkExpiredMsg, error) {
	var msg MarkExpiredMsg
	if err := arabica.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	var conf Configuration
	if err := gconf.Load(db, "collateral", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	if err := x.RequireAddress(ctx, h.auth, conf.Admin, "admin"); err != nil {
		return nil, err
	}
	return &msg, nil
}

type activeQuery struct {
	ctrl BaseController
}

func (q activeQuery) Query(db arabica.ReadOnlyKVStore, mod string, data []byte) ([]arabica.Model, error) {
	ids, assets, err := q.ctrl.ActiveAssets(db)
	if err != nil {
		return nil, err
	}
	res := make([]arabica.Model, len(ids))
	for i := range ids {
		raw, err := assets[i].Marshal()
		if err != nil {
			return nil, err
		}
		res[i] = arabica.Pair(ids[i], raw)
	}
	return res, nil
}

// Initializer loads the registry configuration.
type Initializer struct{}

var _ arabica.Initializer = Initializer{}

func (Initializer) FromGenesis(opts arabica.Options, db arabica.KVStore) error {
	var conf Configuration
	return gconf.InitConfig(db, opts, "collateral", &conf)
}

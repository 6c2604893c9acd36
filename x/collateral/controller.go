package collateral

import (
	"bytes"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/orm"
	"github.com/arabica-labs/arabica/x/params"
)

// Controller is the registry functionality used by other extensions.
type Controller interface {
	// Register stores a new asset and returns its id.
	Register(db arabica.KVStore, a *Asset) ([]byte, error)

	// Get returns the asset with the given id or ErrNotFound.
	Get(db arabica.ReadOnlyKVStore, id []byte) (*Asset, error)

	// SetStatus moves an active asset into another state.
	SetStatus(db arabica.KVStore, id []byte, status Status) error

	// CheckRatio returns true if the collateral value covers the loan by
	// at least the collateral ratio.
	CheckRatio(db arabica.ReadOnlyKVStore, loan, value coin.Amount) (bool, error)

	// VerifyCollateral ensures the asset is active, secures the given loan
	// and its value satisfies the collateral ratio.
	VerifyCollateral(db arabica.ReadOnlyKVStore, assetID, loanID []byte, loan coin.Amount) error
}

// BaseController is the default Controller implementation.
type BaseController struct {
	assets orm.ModelBucket
	params params.Controller
}

var _ Controller = BaseController{}

// NewController returns a registry reading the collateral ratio from the
// protocol parameters.
func NewController(p params.Controller) BaseController {
	return BaseController{
		assets: NewAssetBucket(),
		params: p,
	}
}

func (c BaseController) Register(db arabica.KVStore, a *Asset) ([]byte, error) {
	id, err := c.assets.Put(db, nil, a)
	if err != nil {
		return nil, errors.Wrap(err, "save asset")
	}
	return id, nil
}

func (c BaseController) Get(db arabica.ReadOnlyKVStore, id []byte) (*Asset, error) {
	var a Asset
	if err := c.assets.One(db, id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c BaseController) SetStatus(db arabica.KVStore, id []byte, status Status) error {
	a, err := c.Get(db, id)
	if err != nil {
		return err
	}
	if a.Status != Active {
		return errors.Wrapf(errors.ErrState, "asset is %s", a.Status)
	}
	a.Status = status
	_, err = c.assets.Put(db, id, a)
	return err
}

func (c BaseController) RequiredCollateral(db arabica.ReadOnlyKVStore, loan coin.Amount) (coin.Amount, error) {
	p, err := c.params.Params(db)
	if err != nil {
		return coin.Amount{}, errors.Wrap(err, "params")
	}
	return loan.MulBasisPoints(p.CollateralRatio)
}

func (c BaseController) CheckRatio(db arabica.ReadOnlyKVStore, loan, value coin.Amount) (bool, error) {
	required, err := c.RequiredCollateral(db, loan)
	if err != nil {
		return false, err
	}
	return !value.LessThan(required), nil
}

func (c BaseController) VerifyCollateral(db arabica.ReadOnlyKVStore, assetID, loanID []byte, loan coin.Amount) error {
	a, err := c.Get(db, assetID)
	if err != nil {
		return errors.Wrap(err, "collateral")
	}
	if a.Status != Active {
		return errors.Wrapf(errors.ErrState, "collateral is %s", a.Status)
	}
	if !bytes.Equal(a.LoanID, loanID) {
		return errors.Wrap(errors.ErrState, "collateral secures another loan")
	}
	ok, err := c.CheckRatio(db, loan, a.Value)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrInsufficientAmount, "collateral value %s", a.Value)
	}
	return nil
}

// ActiveAssets returns the ids and content of all active assets.
func (c BaseController) ActiveAssets(db arabica.ReadOnlyKVStore) ([][]byte, []Asset, error) {
	var all []Asset
	keys, err := c.assets.ByPrefix(db, nil, &all)
	if err != nil {
		return nil, nil, err
	}
	var (
		ids    [][]byte
		active []Asset
	)
	for i, a := range all {
		if a.Status == Active {
			ids = append(ids, keys[i])
			active = append(active, a)
		}
	}
	return ids, active, nil
}

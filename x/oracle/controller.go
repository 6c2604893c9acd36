package oracle

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/gconf"
	"github.com/arabica-labs/arabica/orm"
)

// Controller is the price lookup other extensions depend on.
type Controller interface {
	// UnitPrice returns the price of a single unit of the asset.
	UnitPrice(db arabica.ReadOnlyKVStore, ticker string) (coin.Amount, error)

	// Value converts an asset quantity into accounting units.
	Value(db arabica.ReadOnlyKVStore, c coin.Coin) (coin.Amount, error)

	// IsOracle returns true if the address is the configured oracle.
	IsOracle(db arabica.ReadOnlyKVStore, addr arabica.Address) (bool, error)
}

// BaseController is the default Controller implementation.
type BaseController struct {
	prices orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller backed by the prices bucket.
func NewController() BaseController {
	return BaseController{prices: NewPriceBucket()}
}

func (c BaseController) UnitPrice(db arabica.ReadOnlyKVStore, ticker string) (coin.Amount, error) {
	var p Price
	switch err := c.prices.One(db, []byte(ticker), &p); {
	case errors.ErrNotFound.Is(err):
		return coin.NewAmount(MockPrice), nil
	case err != nil:
		return coin.Amount{}, err
	}
	return p.Price, nil
}

func (c BaseController) Value(db arabica.ReadOnlyKVStore, asset coin.Coin) (coin.Amount, error) {
	price, err := c.UnitPrice(db, asset.Ticker)
	if err != nil {
		return coin.Amount{}, errors.Wrapf(err, "price of %s", asset.Ticker)
	}
	return ValueOf(asset.Amount, price)
}

func (c BaseController) IsOracle(db arabica.ReadOnlyKVStore, addr arabica.Address) (bool, error) {
	var conf Configuration
	if err := gconf.Load(db, "oracle", &conf); err != nil {
		return false, errors.Wrap(err, "load configuration")
	}
	return conf.Oracle.Equals(addr), nil
}

// ValueOf returns amount * price / PriceScale.
func ValueOf(amount, price coin.Amount) (coin.Amount, error) {
	return amount.MulDiv(price, coin.NewAmount(PriceScale))
}

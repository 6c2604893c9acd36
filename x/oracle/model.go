package oracle

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/orm"
)

const (
	// PriceScale is the fixed point precision of a unit price.
	PriceScale = 1000000

	// MockPrice is used for assets without a posted price, 2000 accounting
	// units per asset unit.
	MockPrice = 2000 * PriceScale
)

// Configuration holds the address allowed to post prices.
type Configuration struct {
	Oracle arabica.Address `json:"oracle"`
}

func (c *Configuration) Marshal() ([]byte, error) { return codec.Marshal(c) }
func (c *Configuration) Unmarshal(b []byte) error { return codec.Unmarshal(b, c) }

func (c *Configuration) Validate() error {
	return errors.AppendField(nil, "Oracle", c.Oracle.Validate())
}

// Price is the last posted unit price of an asset.
type Price struct {
	Price     coin.Amount
	UpdatedAt arabica.UnixTime
}

var _ orm.Model = (*Price)(nil)

func (p *Price) Marshal() ([]byte, error) { return codec.Marshal(p) }
func (p *Price) Unmarshal(b []byte) error { return codec.Unmarshal(b, p) }

func (p *Price) Validate() error {
	var errs error
	if p.Price.IsZero() {
		errs = errors.AppendField(errs, "Price", errors.ErrAmount)
	}
	errs = errors.AppendField(errs, "UpdatedAt", p.UpdatedAt.Validate())
	return errs
}

// NewPriceBucket returns the bucket storing prices under the asset ticker.
func NewPriceBucket() orm.ModelBucket {
	return orm.NewModelBucket("prices", &Price{})
}

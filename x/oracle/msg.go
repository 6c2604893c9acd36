package oracle

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
)

func init() {
	codec.RegisterMsg(&SetPriceMsg{}, "oracle/set_price")
}

// SetPriceMsg posts the unit price of an asset.
type SetPriceMsg struct {
	Ticker string
	Price  coin.Amount
}

var _ arabica.Msg = (*SetPriceMsg)(nil)

func (SetPriceMsg) Path() string { return "oracle/set_price" }

func (m *SetPriceMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *SetPriceMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *SetPriceMsg) Validate() error {
	var errs error
	if !coin.IsTicker(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrency)
	}
	if m.Price.IsZero() {
		errs = errors.AppendField(errs, "Price", errors.ErrAmount)
	}
	return errs
}

package oracle

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/gconf"
)

// GenesisPrice is an initial price from the genesis file.
type GenesisPrice struct {
	Ticker string      `json:"ticker"`
	Price  coin.Amount `json:"price"`
}

// Initializer loads the oracle configuration and initial prices.
type Initializer struct{}

var _ arabica.Initializer = Initializer{}

func (Initializer) FromGenesis(opts arabica.Options, db arabica.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, "oracle", &conf); err != nil {
		return errors.Wrap(err, "init config")
	}

	var prices []GenesisPrice
	if err := opts.ReadOptions("oracle", &prices); err != nil {
		return err
	}
	bucket := NewPriceBucket()
	for _, p := range prices {
		if !coin.IsTicker(p.Ticker) {
			return errors.Wrapf(errors.ErrCurrency, "ticker %q", p.Ticker)
		}
		if _, err := bucket.Put(db, []byte(p.Ticker), &Price{Price: p.Price}); err != nil {
			return errors.Wrapf(err, "price of %s", p.Ticker)
		}
	}
	return nil
}

package app

import (
	"strings"

	"github.com/arabica-labs/arabica"
)

// ChainInitializers lets you initialize many extensions with one function.
func ChainInitializers(inits ...arabica.Initializer) arabica.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []arabica.Initializer
}

// FromGenesis passes the options to all Initializers in the list, aborting
// at the first error.
func (c chainInitializer) FromGenesis(opts arabica.Options, kv arabica.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}

// ChainTickers runs all given tickers in order on every block. The logs of
// the tickers that reported something are joined.
func ChainTickers(tickers ...arabica.Ticker) arabica.Ticker {
	return chainTicker{tickers}
}

type chainTicker struct {
	tickers []arabica.Ticker
}

func (c chainTicker) Tick(ctx arabica.Context, db arabica.KVStore) (arabica.TickResult, error) {
	var logs []string
	for _, t := range c.tickers {
		res, err := t.Tick(ctx, db)
		if err != nil {
			return arabica.TickResult{}, err
		}
		if res.Log != "" {
			logs = append(logs, res.Log)
		}
	}
	return arabica.TickResult{Log: strings.Join(logs, "; ")}, nil
}

package coin

import (
	"sort"
	"strings"

	"github.com/arabica-labs/arabica/errors"
)

// Coins is a set of coins, at most one per ticker, sorted by ticker and
// without zero amounts.
type Coins []Coin

// Validate ensures the set is normalized.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
		if !c.IsPositive() {
			return errors.Wrapf(errors.ErrAmount, "zero amount of %s", c.Ticker)
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			return errors.Wrap(errors.ErrCurrency, "coins not sorted or duplicated")
		}
	}
	return nil
}

// Get returns the coin of the given ticker, or a zero coin.
func (cs Coins) Get(ticker string) Coin {
	for _, c := range cs {
		if c.Ticker == ticker {
			return c
		}
	}
	return Coin{Ticker: ticker}
}

// Add returns a new set with the given coin added.
func (cs Coins) Add(c Coin) (Coins, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	sum, err := cs.Get(c.Ticker).Add(c)
	if err != nil {
		return nil, err
	}
	return cs.set(sum), nil
}

// Subtract returns a new set with the given coin removed. It fails with
// ErrInsufficientAmount if the set does not hold enough.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	diff, err := cs.Get(c.Ticker).Subtract(c)
	if err != nil {
		return nil, err
	}
	return cs.set(diff), nil
}

// Contains returns true if the set holds at least the given coin.
func (cs Coins) Contains(c Coin) bool {
	return cs.Get(c.Ticker).Amount.Cmp(c.Amount) >= 0
}

func (cs Coins) set(c Coin) Coins {
	res := make(Coins, 0, len(cs)+1)
	for _, o := range cs {
		if o.Ticker != c.Ticker {
			res = append(res, o)
		}
	}
	if c.IsPositive() {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Ticker < res[j].Ticker })
	return res
}

func (cs Coins) String() string {
	if len(cs) == 0 {
		return "(none)"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

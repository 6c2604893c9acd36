package coin

import (
	"fmt"
	"regexp"

	"github.com/arabica-labs/arabica/errors"
)

// IsTicker is the RegExp to ensure valid asset tickers.
var IsTicker = regexp.MustCompile(`^[A-Z][A-Z0-9]{2,5}$`).MatchString

// Coin is an amount of a single asset.
type Coin struct {
	Ticker string `json:"ticker"`
	Amount Amount `json:"amount"`
}

// NewCoin creates a new coin object.
func NewCoin(amount uint64, ticker string) Coin {
	return Coin{Ticker: ticker, Amount: NewAmount(amount)}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(amount uint64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

// Validate ensures the ticker is well formed.
func (c Coin) Validate() error {
	if !IsTicker(c.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", c.Ticker)
	}
	return nil
}

// IsPositive returns true if the coin holds a non zero amount.
func (c Coin) IsPositive() bool {
	return !c.Amount.IsZero()
}

// SameType returns true if both coins are of the same asset.
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Add returns the sum of two coins of the same asset.
func (c Coin) Add(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", o.Ticker, c.Ticker)
	}
	sum, err := c.Amount.Add(o.Amount)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Ticker: c.Ticker, Amount: sum}, nil
}

// Subtract returns c - o. Both coins must be of the same asset.
func (c Coin) Subtract(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "subtracting %s from %s", o.Ticker, c.Ticker)
	}
	diff, err := c.Amount.Sub(o.Amount)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Ticker: c.Ticker, Amount: diff}, nil
}

// IsGTE returns true if c holds at least as much as o of the same asset.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount.Cmp(o.Amount) >= 0
}

func (c Coin) String() string {
	return fmt.Sprintf("%s %s", c.Amount, c.Ticker)
}

package ledger

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/orm"
)

const (
	// DefaultBaseRate is the annual rate in basis points of holders that
	// received tokens without a deposit.
	DefaultBaseRate = 500

	// DaysPerYear divides the annual rate into the daily one.
	DaysPerYear = 365

	// RebaseInterval is the time between two rebase markers.
	RebaseInterval = arabica.Day

	// Decimals of the token.
	Decimals = 6
)

// Configuration of the ledger.
type Configuration struct {
	Admin arabica.Address `json:"admin"`
	// Minters are the only addresses allowed to mint and burn.
	Minters  []arabica.Address `json:"minters"`
	Name     string            `json:"name"`
	Symbol   string            `json:"symbol"`
	BaseRate uint32            `json:"base_rate"`
}

func (c *Configuration) Marshal() ([]byte, error) { return codec.Marshal(c) }
func (c *Configuration) Unmarshal(b []byte) error { return codec.Unmarshal(b, c) }

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", c.Admin.Validate())
	for i, m := range c.Minters {
		errs = errors.AppendField(errs, "Minters", errors.Wrapf(m.Validate(), "minter %d", i))
	}
	if c.Name == "" {
		errs = errors.AppendField(errs, "Name", errors.ErrEmpty)
	}
	if !coin.IsTicker(c.Symbol) {
		errs = errors.AppendField(errs, "Symbol", errors.ErrCurrency)
	}
	if c.BaseRate > coin.BasisPoints {
		errs = errors.AppendField(errs, "BaseRate", errors.ErrInput)
	}
	return errs
}

// IsMinter returns true if the address may mint and burn.
func (c *Configuration) IsMinter(addr arabica.Address) bool {
	for _, m := range c.Minters {
		if m.Equals(addr) {
			return true
		}
	}
	return false
}

// Balance is the yield state of a single holder.
type Balance struct {
	Principal        coin.Amount
	YieldRate        uint32
	LastAccrual      arabica.UnixTime
	TotalYieldEarned coin.Amount
}

var _ orm.Model = (*Balance)(nil)

func (b *Balance) Marshal() ([]byte, error)   { return codec.Marshal(b) }
func (b *Balance) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, b) }

func (b *Balance) Validate() error {
	var errs error
	if b.YieldRate > coin.BasisPoints {
		errs = errors.AppendField(errs, "YieldRate", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "LastAccrual", b.LastAccrual.Validate())
	return errs
}

// accrue compounds the principal for every whole day between the last
// accrual and now. It returns the increase, zero when less than a day
// elapsed.
func (b *Balance) accrue(now arabica.UnixTime) (coin.Amount, error) {
	if now <= b.LastAccrual {
		return coin.Amount{}, nil
	}
	days := uint64(now.Sub(b.LastAccrual) / arabica.Day)
	if days == 0 {
		return coin.Amount{}, nil
	}
	daily := coin.NewAmount(uint64(b.YieldRate / DaysPerYear))
	bp := coin.NewAmount(coin.BasisPoints)

	before := b.Principal
	p := b.Principal
	for i := uint64(0); i < days; i++ {
		inc, err := p.MulDiv(daily, bp)
		if err != nil {
			return coin.Amount{}, err
		}
		if inc.IsZero() {
			// Every following day truncates to zero as well.
			break
		}
		if p, err = p.Add(inc); err != nil {
			return coin.Amount{}, err
		}
	}
	increase, err := p.Sub(before)
	if err != nil {
		return coin.Amount{}, err
	}
	if b.TotalYieldEarned, err = b.TotalYieldEarned.Add(increase); err != nil {
		return coin.Amount{}, err
	}
	b.Principal = p
	b.LastAccrual = now
	return increase, nil
}

// Supply is the total amount of tokens in circulation.
type Supply struct {
	Total      coin.Amount
	LastRebase arabica.UnixTime
}

var _ orm.Model = (*Supply)(nil)

func (s *Supply) Marshal() ([]byte, error)   { return codec.Marshal(s) }
func (s *Supply) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, s) }

func (s *Supply) Validate() error {
	return errors.AppendField(nil, "LastRebase", s.LastRebase.Validate())
}

var supplyKey = []byte("total")

// NewBalanceBucket returns the bucket storing balances under the holder
// address.
func NewBalanceBucket() orm.ModelBucket {
	return orm.NewModelBucket("balances", &Balance{})
}

// NewSupplyBucket returns the bucket holding the single supply record.
func NewSupplyBucket() orm.ModelBucket {
	return orm.NewModelBucket("supply", &Supply{})
}

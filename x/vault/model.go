package vault

import (
	"regexp"
	"time"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/orm"
)

// Kind selects how deposits are valued.
type Kind uint8

const (
	// Stable vaults accept a single asset at face value.
	Stable Kind = iota + 1
	// Priced vaults convert deposits through the oracle.
	Priced
)

func (k Kind) String() string {
	switch k {
	case Stable:
		return "stable"
	case Priced:
		return "priced"
	}
	return "unknown"
}

// MarshalJSON encodes the kind name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON accepts the kind name.
func (k *Kind) UnmarshalJSON(raw []byte) error {
	switch string(raw) {
	case `"stable"`:
		*k = Stable
	case `"priced"`:
		*k = Priced
	default:
		return errors.Wrapf(errors.ErrInput, "unknown vault kind %s", raw)
	}
	return nil
}

// LockPeriod is the term of a deposit.
type LockPeriod uint8

const (
	ThreeMonths LockPeriod = iota + 1
	SixMonths
	TwelveMonths
)

func (p LockPeriod) Validate() error {
	if p < ThreeMonths || p > TwelveMonths {
		return errors.Wrapf(errors.ErrInput, "lock period %d", p)
	}
	return nil
}

// Duration returns the time a deposit stays locked.
func (p LockPeriod) Duration() time.Duration {
	switch p {
	case ThreeMonths:
		return 90 * arabica.Day
	case SixMonths:
		return 180 * arabica.Day
	case TwelveMonths:
		return 365 * arabica.Day
	}
	return 0
}

// Rate returns the yield rate tier of the period for the given base rate.
func (p LockPeriod) Rate(base uint32) uint32 {
	switch p {
	case SixMonths:
		return base * 15 / 10
	case TwelveMonths:
		return base * 2
	}
	return base
}

func (p LockPeriod) String() string {
	switch p {
	case ThreeMonths:
		return "3m"
	case SixMonths:
		return "6m"
	case TwelveMonths:
		return "12m"
	}
	return "invalid"
}

var validName = regexp.MustCompile(`^[a-z0-9_]{3,16}$`).MatchString

// Vault is a single vault instance.
type Vault struct {
	Kind Kind
	// Assets are the accepted tickers. A stable vault has exactly one.
	Assets []string
	// TotalDeposits is the sum of the value of all recorded deposits.
	TotalDeposits coin.Amount
}

var _ orm.Model = (*Vault)(nil)

func (v *Vault) Marshal() ([]byte, error)   { return codec.Marshal(v) }
func (v *Vault) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, v) }

func (v *Vault) Validate() error {
	var errs error
	switch v.Kind {
	case Stable:
		if len(v.Assets) != 1 {
			errs = errors.AppendField(errs, "Assets", errors.Wrap(errors.ErrInput, "stable vault requires exactly one asset"))
		}
	case Priced:
		if len(v.Assets) == 0 {
			errs = errors.AppendField(errs, "Assets", errors.ErrEmpty)
		}
	default:
		errs = errors.AppendField(errs, "Kind", errors.ErrInput)
	}
	for _, a := range v.Assets {
		if !coin.IsTicker(a) {
			errs = errors.AppendField(errs, "Assets", errors.Wrapf(errors.ErrCurrency, "ticker %q", a))
		}
	}
	return errs
}

// Supports returns true if the ticker is accepted.
func (v *Vault) Supports(ticker string) bool {
	for _, a := range v.Assets {
		if a == ticker {
			return true
		}
	}
	return false
}

// Deposit is the active deposit of a user in a vault.
type Deposit struct {
	// Amount is the value in accounting units. Face value for stable
	// vaults.
	Amount      coin.Amount
	DepositTime arabica.UnixTime
	UnlockTime  arabica.UnixTime
	LockPeriod  LockPeriod
	// VaultType is the ticker of the deposited asset.
	VaultType string
}

var _ orm.Model = (*Deposit)(nil)

func (d *Deposit) Marshal() ([]byte, error)   { return codec.Marshal(d) }
func (d *Deposit) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, d) }

func (d *Deposit) Validate() error {
	var errs error
	if d.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	errs = errors.AppendField(errs, "DepositTime", d.DepositTime.Validate())
	if d.UnlockTime < d.DepositTime {
		errs = errors.AppendField(errs, "UnlockTime", errors.Wrap(errors.ErrInput, "before deposit"))
	}
	errs = errors.AppendField(errs, "LockPeriod", d.LockPeriod.Validate())
	if !coin.IsTicker(d.VaultType) {
		errs = errors.AppendField(errs, "VaultType", errors.ErrCurrency)
	}
	return errs
}

// Holding is the raw asset quantity held in custody for a priced deposit.
type Holding struct {
	Raw coin.Coin
}

var _ orm.Model = (*Holding)(nil)

func (h *Holding) Marshal() ([]byte, error)   { return codec.Marshal(h) }
func (h *Holding) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, h) }

func (h *Holding) Validate() error {
	return errors.AppendField(nil, "Raw", h.Raw.Validate())
}

// Configuration of all vaults.
type Configuration struct {
	Admin arabica.Address `json:"admin"`
}

func (c *Configuration) Marshal() ([]byte, error) { return codec.Marshal(c) }
func (c *Configuration) Unmarshal(b []byte) error { return codec.Unmarshal(b, c) }

func (c *Configuration) Validate() error {
	return errors.AppendField(nil, "Admin", c.Admin.Validate())
}

// CustodyAddress is the address holding the assets of a vault. It must be
// listed as a ledger minter.
func CustodyAddress(vault string) arabica.Address {
	return arabica.NewCondition("vault", "custody", []byte(vault)).Address()
}

// DepositKey is the key of the deposit of a user in a vault.
func DepositKey(vault string, user arabica.Address) []byte {
	return append([]byte(vault+"/"), user...)
}

// NewVaultBucket returns the bucket storing vaults by name.
func NewVaultBucket() orm.ModelBucket {
	return orm.NewModelBucket("vaults", &Vault{})
}

// NewDepositBucket returns the bucket storing deposits under DepositKey.
func NewDepositBucket() orm.ModelBucket {
	return orm.NewModelBucket("deposits", &Deposit{})
}

// NewHoldingBucket returns the bucket storing priced holdings under
// DepositKey.
func NewHoldingBucket() orm.ModelBucket {
	return orm.NewModelBucket("holdings", &Holding{})
}

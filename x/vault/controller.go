package vault

import (
	"time"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/gconf"
	"github.com/arabica-labs/arabica/orm"
	"github.com/arabica-labs/arabica/store"
	"github.com/arabica-labs/arabica/x/cash"
	"github.com/arabica-labs/arabica/x/ledger"
	"github.com/arabica-labs/arabica/x/oracle"
	"github.com/arabica-labs/arabica/x/params"
)

const pkg = "vault"

// Controller coordinates custody, valuation and the ledger for all vaults.
type Controller struct {
	vaults   orm.ModelBucket
	deposits orm.ModelBucket
	holdings orm.ModelBucket

	cash   cash.Controller
	ledger ledger.Controller
	oracle oracle.Controller
	params params.Controller
}

// NewController returns a controller using the given collaborators.
func NewController(c cash.Controller, l ledger.Controller, o oracle.Controller, p params.Controller) Controller {
	return Controller{
		vaults:   NewVaultBucket(),
		deposits: NewDepositBucket(),
		holdings: NewHoldingBucket(),
		cash:     c,
		ledger:   l,
		oracle:   o,
		params:   p,
	}
}

// Vault returns the vault with the given name.
func (c Controller) Vault(db arabica.ReadOnlyKVStore, name string) (*Vault, error) {
	var v Vault
	if err := c.vaults.One(db, []byte(name), &v); err != nil {
		return nil, errors.Wrapf(err, "vault %q", name)
	}
	return &v, nil
}

// CreateVault stores a new vault. ErrDuplicate is returned if the name is
// taken.
func (c Controller) CreateVault(db arabica.KVStore, name string, v *Vault) error {
	if !validName(name) {
		return errors.Wrapf(errors.ErrInput, "vault name %q", name)
	}
	switch err := c.vaults.Has(db, []byte(name)); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "vault %q", name)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	_, err := c.vaults.Put(db, []byte(name), v)
	return err
}

// AddAsset makes a priced vault accept another ticker.
func (c Controller) AddAsset(db arabica.KVStore, name, ticker string) error {
	v, err := c.Vault(db, name)
	if err != nil {
		return err
	}
	if v.Kind != Priced {
		return errors.Wrapf(errors.ErrState, "%s vault accepts a single asset", v.Kind)
	}
	if v.Supports(ticker) {
		return errors.Wrapf(errors.ErrDuplicate, "asset %s", ticker)
	}
	v.Assets = append(v.Assets, ticker)
	_, err = c.vaults.Put(db, []byte(name), v)
	return err
}

// DepositOf returns the active deposit of the user, ErrNotFound if none.
func (c Controller) DepositOf(db arabica.ReadOnlyKVStore, name string, user arabica.Address) (*Deposit, error) {
	var d Deposit
	if err := c.deposits.One(db, DepositKey(name, user), &d); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	return &d, nil
}

// LockExpiry returns the unlock time of the active deposit of the user.
func (c Controller) LockExpiry(db arabica.ReadOnlyKVStore, name string, user arabica.Address) (arabica.UnixTime, error) {
	d, err := c.DepositOf(db, name, user)
	if err != nil {
		return 0, err
	}
	return d.UnlockTime, nil
}

// YieldRate returns the rate tier of a lock period, capped by the
// maximum yield rate parameter.
func (c Controller) YieldRate(db arabica.ReadOnlyKVStore, period LockPeriod) (uint32, error) {
	base, err := c.ledger.BaseRate(db)
	if err != nil {
		return 0, err
	}
	p, err := c.params.Params(db)
	if err != nil {
		return 0, err
	}
	rate := period.Rate(base)
	if uint64(rate) > p.MaximumYieldRate {
		rate = uint32(p.MaximumYieldRate)
	}
	return rate, nil
}

// Deposit locks the asset of the user and mints ledger tokens worth its
// value. Either every step succeeds or none has an effect.
func (c Controller) Deposit(ctx arabica.Context, db arabica.KVStore, name string, user arabica.Address, asset coin.Coin, period LockPeriod) (*Deposit, error) {
	if !asset.IsPositive() {
		return nil, errors.Wrap(errors.ErrAmount, "deposit must be positive")
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	v, err := c.Vault(db, name)
	if err != nil {
		return nil, err
	}
	if !v.Supports(asset.Ticker) {
		return nil, errors.Wrapf(errors.ErrCurrency, "vault %q does not accept %s", name, asset.Ticker)
	}
	p, err := c.params.Params(db)
	if err != nil {
		return nil, err
	}
	if period.Duration() < time.Duration(p.MinimumLockPeriod)*time.Second {
		return nil, errors.Wrapf(errors.ErrInput, "lock period %s below minimum", period)
	}
	// All vaults mint into the same ledger record, so a user holds at most
	// one deposit across every vault and no tokens beside it.
	switch active, err := c.activeVault(db, user); {
	case err != nil:
		return nil, err
	case active != "":
		return nil, errors.Wrapf(errors.ErrDuplicate, "withdraw the active %q deposit first", active)
	}
	switch bal, err := c.ledger.Balance(db, user); {
	case err != nil:
		return nil, err
	case !bal.IsZero():
		return nil, errors.Wrapf(errors.ErrDuplicate, "ledger balance %s must be zero", bal)
	}
	key := DepositKey(name, user)
	rate, err := c.YieldRate(db, period)
	if err != nil {
		return nil, err
	}

	custody := CustodyAddress(name)
	dep := &Deposit{
		DepositTime: now,
		UnlockTime:  now.Add(period.Duration()),
		LockPeriod:  period,
		VaultType:   asset.Ticker,
	}
	err = store.Atomic(db, func(db store.KVStore) error {
		if err := c.cash.MoveCoins(db, user, custody, asset); err != nil {
			return errors.Wrap(err, "custody")
		}
		switch v.Kind {
		case Stable:
			dep.Amount = asset.Amount
		case Priced:
			value, err := c.oracle.Value(db, asset)
			if err != nil {
				return errors.Wrap(err, "valuation")
			}
			if value.IsZero() {
				return errors.Wrap(errors.ErrAmount, "deposit value is zero")
			}
			dep.Amount = value
			if _, err := c.holdings.Put(db, key, &Holding{Raw: asset}); err != nil {
				return err
			}
		}
		if _, err := c.deposits.Put(db, key, dep); err != nil {
			return err
		}
		if v.TotalDeposits, err = v.TotalDeposits.Add(dep.Amount); err != nil {
			return err
		}
		if _, err := c.vaults.Put(db, []byte(name), v); err != nil {
			return err
		}
		return c.ledger.Mint(ctx, db, custody, user, dep.Amount, asset.Ticker, rate)
	})
	if err != nil {
		return nil, err
	}
	return dep, nil
}

// Withdraw releases the deposit of the user after the lock expired. The
// accrued ledger balance is burned and the asset worth it is returned.
func (c Controller) Withdraw(ctx arabica.Context, db arabica.KVStore, name string, user arabica.Address) (coin.Coin, error) {
	v, err := c.Vault(db, name)
	if err != nil {
		return coin.Coin{}, err
	}
	key := DepositKey(name, user)
	dep, err := c.DepositOf(db, name, user)
	if err != nil {
		return coin.Coin{}, err
	}
	if !arabica.IsExpired(ctx, dep.UnlockTime) {
		return coin.Coin{}, errors.Wrapf(errors.ErrLocked, "locked until %s", dep.UnlockTime)
	}

	custody := CustodyAddress(name)
	var released coin.Coin
	err = store.Atomic(db, func(db store.KVStore) error {
		if _, err := c.ledger.Accrue(ctx, db, user); err != nil {
			return errors.Wrap(err, "accrue")
		}
		final, err := c.ledger.Balance(db, user)
		if err != nil {
			return err
		}

		switch v.Kind {
		case Stable:
			released = coin.Coin{Ticker: dep.VaultType, Amount: final}
		case Priced:
			var h Holding
			if err := c.holdings.One(db, key, &h); err != nil {
				return errors.Wrap(err, "holding")
			}
			if released, err = c.rawQuantity(db, h.Raw, final); err != nil {
				return err
			}
			if err := c.holdings.Delete(db, key); err != nil {
				return err
			}
		}

		if !final.IsZero() {
			if err := c.ledger.Burn(ctx, db, custody, user, final); err != nil {
				return errors.Wrap(err, "burn")
			}
		}
		if released.IsPositive() {
			if err := c.cash.MoveCoins(db, custody, user, released); err != nil {
				return errors.Wrap(err, "release")
			}
		}
		return c.closeDeposit(db, name, v, key, dep)
	})
	if err != nil {
		return coin.Coin{}, err
	}
	return released, nil
}

// rawQuantity solves original * final / current for the quantity of the
// asset worth the final value at today's price.
func (c Controller) rawQuantity(db arabica.ReadOnlyKVStore, original coin.Coin, final coin.Amount) (coin.Coin, error) {
	current, err := c.oracle.Value(db, original)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "valuation")
	}
	if current.IsZero() {
		return original, nil
	}
	raw, err := original.Amount.MulDiv(final, current)
	if err != nil {
		return coin.Coin{}, err
	}
	return coin.Coin{Ticker: original.Ticker, Amount: raw}, nil
}

// EmergencyWithdraw releases a stable deposit before the lock expired,
// minus the emergency withdraw fee. Accrued yield is forfeited, the
// whole ledger balance of the user is burned.
func (c Controller) EmergencyWithdraw(ctx arabica.Context, db arabica.KVStore, name string, user arabica.Address) (coin.Coin, error) {
	v, err := c.Vault(db, name)
	if err != nil {
		return coin.Coin{}, err
	}
	if v.Kind != Stable {
		return coin.Coin{}, errors.Wrapf(errors.ErrUnsupported, "emergency withdraw from a %s vault", v.Kind)
	}
	key := DepositKey(name, user)
	dep, err := c.DepositOf(db, name, user)
	if err != nil {
		return coin.Coin{}, err
	}
	p, err := c.params.Params(db)
	if err != nil {
		return coin.Coin{}, err
	}
	penalty, err := dep.Amount.MulBasisPoints(p.EmergencyWithdrawFee)
	if err != nil {
		return coin.Coin{}, err
	}
	payout, err := dep.Amount.Sub(penalty)
	if err != nil {
		return coin.Coin{}, err
	}
	released := coin.Coin{Ticker: dep.VaultType, Amount: payout}

	custody := CustodyAddress(name)
	err = store.Atomic(db, func(db store.KVStore) error {
		bal, err := c.ledger.Balance(db, user)
		if err != nil {
			return err
		}
		if !bal.IsZero() {
			if err := c.ledger.Burn(ctx, db, custody, user, bal); err != nil {
				return errors.Wrap(err, "burn")
			}
		}
		if released.IsPositive() {
			if err := c.cash.MoveCoins(db, custody, user, released); err != nil {
				return errors.Wrap(err, "release")
			}
		}
		return c.closeDeposit(db, name, v, key, dep)
	})
	if err != nil {
		return coin.Coin{}, err
	}
	return released, nil
}

// activeVault returns the name of the vault holding a deposit of the user,
// empty if there is none.
func (c Controller) activeVault(db arabica.ReadOnlyKVStore, user arabica.Address) (string, error) {
	var vs []Vault
	names, err := c.vaults.ByPrefix(db, nil, &vs)
	if err != nil {
		return "", err
	}
	for _, n := range names {
		switch err := c.deposits.Has(db, DepositKey(string(n), user)); {
		case err == nil:
			return string(n), nil
		case !errors.ErrNotFound.Is(err):
			return "", err
		}
	}
	return "", nil
}

func (c Controller) closeDeposit(db arabica.KVStore, name string, v *Vault, key []byte, dep *Deposit) error {
	if err := c.deposits.Delete(db, key); err != nil {
		return err
	}
	var err error
	if v.TotalDeposits, err = v.TotalDeposits.Sub(dep.Amount); err != nil {
		return errors.Wrap(err, "vault total")
	}
	_, err = c.vaults.Put(db, []byte(name), v)
	return err
}

// DepositsOf returns all active deposits of a vault keyed by user.
func (c Controller) DepositsOf(db arabica.ReadOnlyKVStore, name string) ([]arabica.Address, []Deposit, error) {
	var deps []Deposit
	keys, err := c.deposits.ByPrefix(db, []byte(name+"/"), &deps)
	if err != nil {
		return nil, nil, err
	}
	users := make([]arabica.Address, len(keys))
	for i, k := range keys {
		users[i] = arabica.Address(k[len(name)+1:])
	}
	return users, deps, nil
}

func loadConf(db arabica.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, pkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

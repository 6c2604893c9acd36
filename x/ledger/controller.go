package ledger

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/gconf"
	"github.com/arabica-labs/arabica/orm"
)

const pkg = "ledger"

// Controller is the ledger functionality other extensions depend on.
type Controller interface {
	// Mint credits the holder and resets its yield state. The minter must
	// be authorized. Class names the vault the tokens originate from.
	Mint(ctx arabica.Context, db arabica.KVStore, minter, holder arabica.Address, amount coin.Amount, class string, rate uint32) error

	// Burn removes tokens of the holder. The minter must be authorized.
	Burn(ctx arabica.Context, db arabica.KVStore, minter, holder arabica.Address, amount coin.Amount) error

	// Accrue folds the yield of all whole days elapsed into the principal
	// and returns the increase.
	Accrue(ctx arabica.Context, db arabica.KVStore, holder arabica.Address) (coin.Amount, error)

	// Balance returns the principal of the holder, zero if unknown.
	Balance(db arabica.ReadOnlyKVStore, holder arabica.Address) (coin.Amount, error)

	// BaseRate returns the configured base annual rate.
	BaseRate(db arabica.ReadOnlyKVStore) (uint32, error)
}

// BaseController is the default Controller implementation.
type BaseController struct {
	balances orm.ModelBucket
	supply   orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a ledger backed by the balances bucket.
func NewController() BaseController {
	return BaseController{
		balances: NewBalanceBucket(),
		supply:   NewSupplyBucket(),
	}
}

func (c BaseController) Mint(ctx arabica.Context, db arabica.KVStore, minter, holder arabica.Address, amount coin.Amount, class string, rate uint32) error {
	if err := c.requireMinter(db, minter); err != nil {
		return err
	}
	if amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "mint amount must be positive")
	}
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return err
	}
	b, err := c.balance(db, holder)
	if err != nil {
		return err
	}
	principal, err := b.Principal.Add(amount)
	if err != nil {
		return err
	}
	// A mint replaces the yield state. Any previous yield must have been
	// accrued already, the vaults allow a single active deposit per user.
	b = &Balance{
		Principal:   principal,
		YieldRate:   rate,
		LastAccrual: now,
	}
	if err := c.save(db, holder, b); err != nil {
		return err
	}
	if err := c.changeSupply(db, amount, true); err != nil {
		return err
	}
	arabica.GetLogger(ctx).Debug("minted", "holder", holder, "amount", amount.String(), "class", class, "rate", rate)
	return nil
}

func (c BaseController) Burn(ctx arabica.Context, db arabica.KVStore, minter, holder arabica.Address, amount coin.Amount) error {
	if err := c.requireMinter(db, minter); err != nil {
		return err
	}
	return c.burn(db, holder, amount)
}

func (c BaseController) burn(db arabica.KVStore, holder arabica.Address, amount coin.Amount) error {
	if amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "burn amount must be positive")
	}
	b, err := c.balance(db, holder)
	if err != nil {
		return err
	}
	if b.Principal.LessThan(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %s, burn %s", b.Principal, amount)
	}
	if b.Principal, err = b.Principal.Sub(amount); err != nil {
		return err
	}
	if err := c.save(db, holder, b); err != nil {
		return err
	}
	return c.changeSupply(db, amount, false)
}

func (c BaseController) Accrue(ctx arabica.Context, db arabica.KVStore, holder arabica.Address) (coin.Amount, error) {
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return coin.Amount{}, err
	}
	var b Balance
	switch err := c.balances.One(db, holder, &b); {
	case errors.ErrNotFound.Is(err):
		return coin.Amount{}, nil
	case err != nil:
		return coin.Amount{}, err
	}
	increase, err := b.accrue(now)
	if err != nil {
		return coin.Amount{}, errors.Wrap(err, "accrue")
	}
	if increase.IsZero() && b.LastAccrual != now {
		return increase, nil
	}
	if err := c.save(db, holder, &b); err != nil {
		return coin.Amount{}, err
	}
	if err := c.changeSupply(db, increase, true); err != nil {
		return coin.Amount{}, err
	}
	return increase, nil
}

// Transfer moves tokens between holders. Both sides accrue first so the
// moved principal earns nothing for time it was not held. A recipient
// without a balance record starts with the base rate and its accrual
// clock set to now.
func (c BaseController) Transfer(ctx arabica.Context, db arabica.KVStore, from, to arabica.Address, amount coin.Amount) error {
	if amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "transfer amount must be positive")
	}
	now, err := arabica.BlockUnixTime(ctx)
	if err != nil {
		return err
	}
	if _, err := c.Accrue(ctx, db, from); err != nil {
		return errors.Wrap(err, "accrue sender")
	}
	if _, err := c.Accrue(ctx, db, to); err != nil {
		return errors.Wrap(err, "accrue recipient")
	}
	sender, err := c.balance(db, from)
	if err != nil {
		return err
	}
	if sender.Principal.LessThan(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %s, transfer %s", sender.Principal, amount)
	}
	if sender.Principal, err = sender.Principal.Sub(amount); err != nil {
		return err
	}
	if err := c.save(db, from, sender); err != nil {
		return err
	}

	// Loaded after the sender was saved, from and to may be equal.
	var recipient Balance
	switch err := c.balances.One(db, to, &recipient); {
	case errors.ErrNotFound.Is(err):
		rate, err := c.BaseRate(db)
		if err != nil {
			return err
		}
		recipient = Balance{YieldRate: rate, LastAccrual: now}
	case err != nil:
		return err
	}
	if recipient.Principal, err = recipient.Principal.Add(amount); err != nil {
		return err
	}
	return c.save(db, to, &recipient)
}

func (c BaseController) Balance(db arabica.ReadOnlyKVStore, holder arabica.Address) (coin.Amount, error) {
	b, err := c.balance(db, holder)
	if err != nil {
		return coin.Amount{}, err
	}
	return b.Principal, nil
}

// Record returns the full yield state of the holder, ErrNotFound if the
// holder never held tokens.
func (c BaseController) Record(db arabica.ReadOnlyKVStore, holder arabica.Address) (*Balance, error) {
	var b Balance
	if err := c.balances.One(db, holder, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// TotalSupply returns the amount of tokens in circulation.
func (c BaseController) TotalSupply(db arabica.ReadOnlyKVStore) (coin.Amount, error) {
	s, err := c.loadSupply(db)
	if err != nil {
		return coin.Amount{}, err
	}
	return s.Total, nil
}

func (c BaseController) BaseRate(db arabica.ReadOnlyKVStore) (uint32, error) {
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	return conf.BaseRate, nil
}

// SetBaseRate changes the rate assigned to new holders.
func (c BaseController) SetBaseRate(db arabica.KVStore, rate uint32) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	conf.BaseRate = rate
	return gconf.Save(db, pkg, conf)
}

func (c BaseController) requireMinter(db arabica.ReadOnlyKVStore, minter arabica.Address) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	if !conf.IsMinter(minter) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not an authorized minter", minter)
	}
	return nil
}

// balance returns the record of the holder or an empty one.
func (c BaseController) balance(db arabica.ReadOnlyKVStore, holder arabica.Address) (*Balance, error) {
	var b Balance
	if err := c.balances.One(db, holder, &b); err != nil && !errors.ErrNotFound.Is(err) {
		return nil, err
	}
	return &b, nil
}

func (c BaseController) save(db arabica.KVStore, holder arabica.Address, b *Balance) error {
	if err := holder.Validate(); err != nil {
		return errors.Wrap(err, "holder")
	}
	_, err := c.balances.Put(db, holder, b)
	return err
}

func (c BaseController) loadSupply(db arabica.ReadOnlyKVStore) (*Supply, error) {
	var s Supply
	if err := c.supply.One(db, supplyKey, &s); err != nil && !errors.ErrNotFound.Is(err) {
		return nil, err
	}
	return &s, nil
}

func (c BaseController) changeSupply(db arabica.KVStore, amount coin.Amount, increase bool) error {
	s, err := c.loadSupply(db)
	if err != nil {
		return err
	}
	if increase {
		s.Total, err = s.Total.Add(amount)
	} else {
		s.Total, err = s.Total.Sub(amount)
	}
	if err != nil {
		return errors.Wrap(err, "total supply")
	}
	_, err = c.supply.Put(db, supplyKey, s)
	return err
}

func loadConf(db arabica.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, pkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

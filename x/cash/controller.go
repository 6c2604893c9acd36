package cash

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/orm"
)

// Controller is the functionality other extensions need to move coins
// between accounts.
type Controller interface {
	// Balance returns the coins held by the address.
	Balance(db arabica.ReadOnlyKVStore, addr arabica.Address) (coin.Coins, error)

	// MoveCoins moves the given amount from src to dest. It fails if src
	// does not have sufficient coins.
	MoveCoins(db arabica.KVStore, src, dest arabica.Address, amount coin.Coin) error

	// IssueCoins creates the given amount of coins in the dest wallet.
	IssueCoins(db arabica.KVStore, dest arabica.Address, amount coin.Coin) error
}

// BaseController is the default Controller implementation.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller backed by the wallets bucket.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

func (c BaseController) Balance(db arabica.ReadOnlyKVStore, addr arabica.Address) (coin.Coins, error) {
	w, err := loadWallet(db, c.bucket, addr)
	if err != nil {
		return nil, err
	}
	return w.Coins, nil
}

func (c BaseController) MoveCoins(db arabica.KVStore, src, dest arabica.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}

	sender, err := loadWallet(db, c.bucket, src)
	if err != nil {
		return err
	}
	if !sender.Coins.Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s has less than %s", src, amount)
	}
	if sender.Coins, err = sender.Coins.Subtract(amount); err != nil {
		return err
	}
	if err := c.save(db, src, sender); err != nil {
		return err
	}

	// Load the recipient after the sender was saved, src and dest may be
	// the same address.
	recipient, err := loadWallet(db, c.bucket, dest)
	if err != nil {
		return err
	}
	if recipient.Coins, err = recipient.Coins.Add(amount); err != nil {
		return err
	}
	return c.save(db, dest, recipient)
}

func (c BaseController) IssueCoins(db arabica.KVStore, dest arabica.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	recipient, err := loadWallet(db, c.bucket, dest)
	if err != nil {
		return err
	}
	if recipient.Coins, err = recipient.Coins.Add(amount); err != nil {
		return err
	}
	return c.save(db, dest, recipient)
}

// save removes empty wallets from the store.
func (c BaseController) save(db arabica.KVStore, addr arabica.Address, w *Wallet) error {
	if len(w.Coins) == 0 {
		if err := c.bucket.Delete(db, addr); err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return nil
	}
	_, err := c.bucket.Put(db, addr, w)
	return err
}

package cash

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/orm"
)

// BucketName is where the wallets are stored.
const BucketName = "wallets"

// Wallet is the set of coins owned by a single address.
type Wallet struct {
	Coins coin.Coins `json:"coins"`
}

var _ orm.Model = (*Wallet)(nil)

func (w *Wallet) Marshal() ([]byte, error) { return codec.Marshal(w) }
func (w *Wallet) Unmarshal(b []byte) error { return codec.Unmarshal(b, w) }

func (w *Wallet) Validate() error {
	return errors.Wrap(w.Coins.Validate(), "coins")
}

// NewBucket returns the bucket storing wallets under the owner address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}

// loadWallet returns the wallet of the address, or an empty one.
func loadWallet(db arabica.ReadOnlyKVStore, b orm.ModelBucket, addr arabica.Address) (*Wallet, error) {
	var w Wallet
	if err := b.One(db, addr, &w); err != nil && !errors.ErrNotFound.Is(err) {
		return nil, err
	}
	return &w, nil
}

package ledger

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/gconf"
)

// Initializer loads the ledger configuration and creates an empty supply.
type Initializer struct{}

var _ arabica.Initializer = Initializer{}

func (Initializer) FromGenesis(opts arabica.Options, db arabica.KVStore) error {
	conf := Configuration{BaseRate: DefaultBaseRate}
	if err := gconf.InitConfig(db, opts, pkg, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}
	if _, err := NewSupplyBucket().Put(db, supplyKey, &Supply{}); err != nil {
		return errors.Wrap(err, "init supply")
	}
	return nil
}

package consensus

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/gconf"
)

// Initializer loads the committee and governance configuration.
type Initializer struct{}

var _ arabica.Initializer = Initializer{}

func (Initializer) FromGenesis(opts arabica.Options, db arabica.KVStore) error {
	var conf Configuration
	return gconf.InitConfig(db, opts, pkg, &conf)
}

package vault

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/gconf"
)

// GenesisVault describes a vault created at genesis.
type GenesisVault struct {
	Name   string   `json:"name"`
	Kind   Kind     `json:"kind"`
	Assets []string `json:"assets"`
}

// Initializer loads the vault configuration and creates the vaults.
type Initializer struct{}

var _ arabica.Initializer = Initializer{}

func (Initializer) FromGenesis(opts arabica.Options, db arabica.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, pkg, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}
	var vaults []GenesisVault
	if err := opts.ReadOptions("vault", &vaults); err != nil {
		return err
	}
	ctrl := Controller{vaults: NewVaultBucket()}
	for _, g := range vaults {
		v := Vault{Kind: g.Kind, Assets: g.Assets}
		if err := ctrl.CreateVault(db, g.Name, &v); err != nil {
			return errors.Wrapf(err, "vault %q", g.Name)
		}
	}
	return nil
}

/*
Package arabicad links together all the various components to construct
the arabica application.
*/
package arabicad

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/app"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/store/iavl"
	"github.com/arabica-labs/arabica/x"
	"github.com/arabica-labs/arabica/x/cash"
	"github.com/arabica-labs/arabica/x/collateral"
	"github.com/arabica-labs/arabica/x/consensus"
	"github.com/arabica-labs/arabica/x/ledger"
	"github.com/arabica-labs/arabica/x/oracle"
	"github.com/arabica-labs/arabica/x/params"
	"github.com/arabica-labs/arabica/x/sigs"
	"github.com/arabica-labs/arabica/x/utils"
	"github.com/arabica-labs/arabica/x/vault"
	"github.com/prometheus/client_golang/prometheus"
)

// Name is returned by the abci Info call.
const Name = "arabica"

// Authenticator returns the typical authentication, just using public key
// signatures.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication, logging,
// metrics and recovery. A nil registerer disables the metrics.
func Chain(reg prometheus.Registerer) app.Decorators {
	var metrics *utils.Metrics
	if reg != nil {
		metrics = utils.NewMetrics(reg)
	}
	return app.ChainDecorators(
		utils.NewLogging(),
		metrics,
		utils.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, a failing message does not leave partial state,
		// the signature sequence is still incremented
		utils.NewSavepoint().OnDeliver(),
	)
}

// Controllers are the shared module controllers, so that every module
// talks to the same implementation of its collaborators.
type Controllers struct {
	Cash       cash.BaseController
	Oracle     oracle.BaseController
	Params     params.BaseController
	Ledger     ledger.BaseController
	Collateral collateral.BaseController
	Vault      vault.Controller
	Consensus  consensus.Controller
}

// NewControllers wires the module controllers together.
func NewControllers() Controllers {
	c := Controllers{
		Cash:   cash.NewController(),
		Oracle: oracle.NewController(),
		Params: params.NewController(),
		Ledger: ledger.NewController(),
	}
	c.Collateral = collateral.NewController(c.Params)
	c.Vault = vault.NewController(c.Cash, c.Ledger, c.Oracle, c.Params)
	c.Consensus = consensus.NewController(c.Ledger, c.Collateral, c.Params)
	return c
}

// Router returns a router dispatching to all module handlers.
func Router(authFn x.Authenticator, c Controllers) *app.Router {
	r := app.NewRouter()
	cash.RegisterRoutes(r, authFn, c.Cash)
	oracle.RegisterRoutes(r, authFn)
	ledger.RegisterRoutes(r, authFn, c.Ledger)
	vault.RegisterRoutes(r, authFn, c.Vault)
	collateral.RegisterRoutes(r, authFn, c.Collateral, c.Consensus, c.Oracle)
	consensus.RegisterRoutes(r, authFn, c.Consensus)
	return r
}

// QueryRouter returns a query router exposing the state of all modules.
func QueryRouter(c Controllers) arabica.QueryRouter {
	r := arabica.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		oracle.RegisterQuery,
		ledger.RegisterQuery,
		vault.RegisterQuery,
		collateral.RegisterQuery(c.Collateral),
		consensus.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis initializers of all modules. Modules
// that depend on configuration of others come later.
func Initializers() arabica.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		oracle.Initializer{},
		params.Initializer{},
		ledger.Initializer{},
		collateral.Initializer{},
		vault.Initializer{},
		consensus.Initializer{},
	)
}

// Ticker returns the tasks run at the beginning of every block.
func Ticker() arabica.Ticker {
	return app.ChainTickers(ledger.NewRebaseTicker())
}

// Stack wires up a standard router with a standard decorator chain. This
// can be passed into BaseApp.
func Stack(reg prometheus.Registerer, c Controllers) arabica.Handler {
	authFn := Authenticator()
	return Chain(reg).WithHandler(Router(authFn, c))
}

// Application constructs the ABCI application over the store at the given
// path. An empty path keeps the state in memory.
func Application(dbPath string, reg prometheus.Registerer, debug bool) (app.BaseApp, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	c := NewControllers()
	store, err := app.NewStoreApp(Name, kv, QueryRouter(c), context.Background())
	if err != nil {
		return app.BaseApp{}, err
	}
	store.WithInit(Initializers())
	return app.NewBaseApp(store, TxDecoder, Stack(reg, c), Ticker(), debug), nil
}

// CommitKVStore returns an initialized KVStore that persists the data to
// the named path.
func CommitKVStore(dbPath string) (arabica.CommitKVStore, error) {
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name %q", dbPath)
	}
	// Some external calls accidentally add a ".db", which is removed.
	path = strings.TrimSuffix(path, filepath.Ext(path))
	return iavl.NewCommitStore(filepath.Dir(path), filepath.Base(path))
}

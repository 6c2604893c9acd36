package arabica

import (
	"encoding/json"

	"github.com/arabica-labs/arabica/errors"
)

// Handler is a core engine that can process a few specific messages.
// This could represent "deposit into a vault" or "approve a loan".
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality like
// authentication, recovery or metrics, to many Handlers.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Ticker is called at the beginning of every block and can perform periodic
// tasks.
type Ticker interface {
	Tick(ctx Context, store KVStore) (TickResult, error)
}

// TickResult is the result of a Ticker call.
type TickResult struct {
	// Log is a human readable note on what the ticker did.
	Log string
}

// Registry is used to register handlers, the setup side of a Router.
type Registry interface {
	Handle(msg Msg, h Handler)
}

// Options are the app state options from the genesis file. Each extension
// looks up its own key and parses the json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under the given key and parses the
// json into the given obj. A missing key is a no-op.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis %q: %s", key, err)
	}
	return nil
}

// Initializer implementations are used to initialize extensions from the
// genesis file contents.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

package app

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx, CheckTx and BeginBlock handlers to the storage
// and query functionality of StoreApp.
type BaseApp struct {
	*StoreApp
	decoder arabica.TxDecoder
	handler arabica.Handler
	ticker  arabica.Ticker
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application.
func NewBaseApp(
	store *StoreApp,
	decoder arabica.TxDecoder,
	handler arabica.Handler,
	ticker arabica.Ticker,
	debug bool,
) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		ticker:   ticker,
		debug:    debug,
	}
}

// DeliverTx dispatches to the handler.
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return arabica.DeliverTxError(err, b.debug)
	}

	ctx := arabica.WithLogInfo(b.BlockContext(),
		"call", "deliver_tx",
		"path", arabica.GetPath(tx))

	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return arabica.DeliverOrError(res, err, b.debug)
}

// CheckTx dispatches to the handler.
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return arabica.CheckTxError(err, b.debug)
	}

	ctx := arabica.WithLogInfo(b.BlockContext(),
		"call", "check_tx",
		"path", arabica.GetPath(tx))

	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return arabica.CheckOrError(res, err, b.debug)
}

// BeginBlock sets up the block context and runs the ticker. A ticker
// failure halts the chain.
func (b BaseApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	res := b.StoreApp.BeginBlock(req)
	if b.ticker == nil {
		return res
	}
	ctx := arabica.WithLogInfo(b.BlockContext(), "call", "begin_block")
	tr, err := b.ticker.Tick(ctx, b.DeliverStore())
	if err != nil {
		panic(errors.Wrap(err, "ticker"))
	}
	if tr.Log != "" {
		arabica.GetLogger(ctx).Info("tick", "result", tr.Log)
	}
	return res
}

// loadTx calls the decoder and captures any panics.
func (b BaseApp) loadTx(txBytes []byte) (tx arabica.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	return
}

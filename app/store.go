package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp contains a data store and all info needed to perform queries
// and handshakes.
//
// It should be embedded in another struct for CheckTx, DeliverTx and
// initializing state from the genesis. Errors in ABCI calls that do not
// take user input (Info, InitChain, BeginBlock, Commit) cannot be handled
// gracefully and cause a panic.
type StoreApp struct {
	logger log.Logger

	// name is what is returned from abci.Info
	name string

	store *CommitStore

	initializer arabica.Initializer
	queryRouter arabica.QueryRouter

	// chainID is loaded from the db on start or set by InitChain.
	chainID string

	// baseContext contains context info that is valid for the lifetime of
	// this app (eg. chain id).
	baseContext arabica.Context

	// blockContext contains context info that is valid for the current
	// block (eg. height, header), reset on BeginBlock.
	blockContext arabica.Context
}

// NewStoreApp initializes this app into a ready state with some defaults.
func NewStoreApp(name string, db arabica.CommitKVStore, queryRouter arabica.QueryRouter, baseContext arabica.Context) (*StoreApp, error) {
	cs, err := NewCommitStore(db)
	if err != nil {
		return nil, err
	}
	s := &StoreApp{
		name:        name,
		store:       cs,
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	s.chainID, err = loadChainID(s.DeliverStore())
	if err != nil {
		return nil, err
	}
	if s.chainID != "" {
		s.baseContext = arabica.WithChainID(s.baseContext, s.chainID)
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return nil, errors.Wrap(err, "commit info")
	}
	s.blockContext = arabica.WithHeight(s.baseContext, info.Version)
	return s, nil
}

// GetChainID returns the current chain id.
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit is used to set the init function we call.
func (s *StoreApp) WithInit(init arabica.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// parseAppState is called from InitChain, the first time the chain starts,
// and not on restarts.
func (s *StoreApp) parseAppState(data []byte, chainID string, init arabica.Initializer) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app_state previously loaded for chain %q", s.chainID)
	}
	if len(data) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state not set in genesis.json, initialize the application before launching the blockchain")
	}
	var appState arabica.Options
	if err := json.Unmarshal(data, &appState); err != nil {
		return errors.Wrapf(errors.ErrInput, "app_state: %s", err)
	}
	if err := s.storeChainID(chainID); err != nil {
		return err
	}
	if init == nil {
		return nil
	}
	return init.FromGenesis(appState, s.DeliverStore())
}

// storeChainID stores the chain id and updates the context.
func (s *StoreApp) storeChainID(chainID string) error {
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = arabica.WithChainID(s.baseContext, s.chainID)
	return nil
}

// WithLogger sets the logger on the StoreApp and its base context.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = arabica.WithLogger(s.baseContext, logger)
	s.logger = logger
	return s
}

// Logger returns the application base logger.
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext returns the block context for public use.
func (s *StoreApp) BlockContext() arabica.Context {
	return s.blockContext
}

// DeliverStore returns the current DeliverTx cache.
func (s *StoreApp) DeliverStore() arabica.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current CheckTx cache.
func (s *StoreApp) CheckStore() arabica.CacheableKVStore {
	return s.store.CheckStore()
}

// Info implements abci.Application. It returns the height and hash, as
// well as the abci name and version.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.logger.Info("Info synced",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))

	return abci.ResponseInfo{
		Data:             s.name,
		Version:          arabica.Version(),
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

// SetOption is not supported.
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

/*
Query gets data from the app store. A query request has the following
elements:

	Path   - the type of query, "/<bucket>" or a registered path
	Data   - what to query, interpreted based on Path
	Height - ignored, the last committed state is queried

The path may be followed by "?prefix" to make a prefix query.

Key and Value in the response are serialized ResultSet objects of the same
size, able to support 0 to N values.
*/
func (s *StoreApp) Query(reqQuery abci.RequestQuery) abci.ResponseQuery {
	path, mod := splitPath(reqQuery.Path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		return queryError(errors.Wrapf(errors.ErrNotFound, "unexpected query path %q", reqQuery.Path))
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return queryError(err)
	}
	models, err := qh.Query(s.store.QueryStore(), mod, reqQuery.Data)
	if err != nil {
		return queryError(err)
	}

	res := abci.ResponseQuery{Height: info.Version}
	if res.Key, err = ResultsFromKeys(models).Marshal(); err != nil {
		return queryError(err)
	}
	if res.Value, err = ResultsFromValues(models).Marshal(); err != nil {
		return queryError(err)
	}
	return res
}

// splitPath splits out the real path along with the query modifier
// (everything after the ?).
func splitPath(path string) (string, string) {
	var mod string
	chunks := strings.SplitN(path, "?", 2)
	if len(chunks) == 2 {
		path = chunks[0]
		mod = chunks[1]
	}
	return path, mod
}

func queryError(err error) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, false)
	return abci.ResponseQuery{
		Log:  log,
		Code: code,
	}
}

// Commit implements abci.Application.
func (s *StoreApp) Commit() abci.ResponseCommit {
	commitID, err := s.store.Commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)
	return abci.ResponseCommit{Data: commitID.Hash}
}

// InitChain implements abci.Application. The genesis app_state is passed
// to the initializers.
func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	if err := s.parseAppState(req.AppStateBytes, req.ChainId, s.initializer); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock implements abci.Application. It sets up the block context.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	ctx := arabica.WithHeader(s.baseContext, req.Header)
	ctx = arabica.WithHeight(ctx, req.Header.GetHeight())
	ctx = arabica.WithBlockTime(ctx, req.Header.GetTime())
	s.blockContext = ctx
	return abci.ResponseBeginBlock{}
}

// EndBlock implements abci.Application. The validator set is static.
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}

package app

import (
	"sync"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining different
// CacheWraps for Deliver and Check, and returning useful state info.
//
// Tendermint calls the consensus and the mempool connections from
// different goroutines, the caches are swapped under a lock.
type CommitStore struct {
	mu        sync.RWMutex
	committed arabica.CommitKVStore
	deliver   arabica.KVCacheWrap
	check     arabica.KVCacheWrap
}

// NewCommitStore loads the CommitKVStore from disk and sets up the deliver
// and check caches.
func NewCommitStore(db arabica.CommitKVStore) (*CommitStore, error) {
	if err := db.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: db,
		deliver:   db.CacheWrap(),
		check:     db.CacheWrap(),
	}, nil
}

// CommitInfo returns the current height and hash.
func (cs *CommitStore) CommitInfo() (arabica.CommitID, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.committed.LatestVersion()
}

// Commit flushes deliver to the underlying store and commits it to disk.
// It then regenerates new deliver and check caches.
func (cs *CommitStore) Commit() (arabica.CommitID, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.deliver.Write(); err != nil {
		return arabica.CommitID{}, errors.Wrap(err, "write deliver cache")
	}
	cs.check.Discard()

	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore returns a store implementation that must be used during the
// checking phase.
func (cs *CommitStore) CheckStore() arabica.CacheableKVStore {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() arabica.CacheableKVStore {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.deliver
}

// QueryStore returns a read only view of the last committed state.
func (cs *CommitStore) QueryStore() arabica.ReadOnlyKVStore {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.committed.CacheWrap()
}

// _arb: is a prefix for internal data.
const chainIDKey = "_arb:chainID"

// loadChainID returns the chain id stored if any.
func loadChainID(kv arabica.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store. Returns an error if
// already set or invalid.
func saveChainID(kv arabica.KVStore, chainID string) error {
	if !arabica.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}

/*
Package store provides the in-memory cache layers that every transaction
runs in. A BTreeCacheWrap records all writes in a btree on top of a read-only
parent and flushes them through a Batch on Write, or drops them on Discard.
Cache wraps nest, which gives savepoint semantics to the handlers.
*/
package store

import "github.com/arabica-labs/arabica"

// Aliases of the storage interfaces for shorter names in this package.
type (
	ReadOnlyKVStore  = arabica.ReadOnlyKVStore
	SetDeleter       = arabica.SetDeleter
	KVStore          = arabica.KVStore
	Batch            = arabica.Batch
	Iterator         = arabica.Iterator
	CacheableKVStore = arabica.CacheableKVStore
	KVCacheWrap      = arabica.KVCacheWrap
	CommitKVStore    = arabica.CommitKVStore
	CommitID         = arabica.CommitID
	Model            = arabica.Model
)

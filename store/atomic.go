package store

// Atomic runs fn on a cache wrap of db. All writes done by fn reach db only
// if fn succeeds; on failure nothing is written and the error is returned.
//
// Handlers already run inside a savepoint. Atomic marks a smaller rollback
// boundary around a sequence of nested calls that must succeed or fail
// together, independently of what the caller does with the error.
func Atomic(db KVStore, fn func(KVStore) error) error {
	var cache KVCacheWrap
	if c, ok := db.(CacheableKVStore); ok {
		cache = c.CacheWrap()
	} else {
		cache = NewBTreeCacheWrap(db, db.NewBatch(), nil)
	}
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return cache.Write()
}

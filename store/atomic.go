package store

// Wrap returns a cache wrap over given store. Stores that do not support
// cache wrapping are wrapped with a btree cache.
func Wrap(db KVStore) KVCacheWrap {
	if c, ok := db.(CacheableKVStore); ok {
		return c.CacheWrap()
	}
	return NewBTreeCacheWrap(db, nil)
}

// Atomic runs fn against a cache wrap of db. All changes done by fn are
// written to db only if fn returns no error, otherwise they are discarded.
func Atomic(db KVStore, fn func(KVStore) error) error {
	cache := Wrap(db)
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return cache.Write()
}

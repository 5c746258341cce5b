package app

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// CommitStore handles loading from a CommitKVStore, maintaining the cache
// wrap used to deliver blocks, and returning useful state info.
type CommitStore struct {
	committed ledger.CommitKVStore
	deliver   ledger.KVCacheWrap
}

// NewCommitStore loads the latest version of the store and sets up the
// deliver cache.
func NewCommitStore(store ledger.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
	}, nil
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() ledger.CommitID {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and commit it to disk.
// It then sets up a new deliver cache.
func (cs *CommitStore) Commit() (ledger.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return ledger.CommitID{}, err
	}
	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}
	cs.deliver = cs.committed.CacheWrap()
	return res, nil
}

// Rollback drops all changes delivered since the last commit.
func (cs *CommitStore) Rollback() {
	cs.deliver.Discard()
	cs.deliver = cs.committed.CacheWrap()
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() ledger.CacheableKVStore {
	return cs.deliver
}

// QueryStore returns a read only view of the last committed state.
func (cs *CommitStore) QueryStore() ledger.ReadOnlyKVStore {
	return committedView{cs.committed}
}

type committedView struct {
	store ledger.CommitKVStore
}

func (v committedView) Get(key []byte) ([]byte, error) {
	return v.store.Get(key)
}

func (v committedView) Has(key []byte) (bool, error) {
	val, err := v.store.Get(key)
	return val != nil, err
}

// _ld: is a prefix for ledger internal data
const (
	chainIDKey = "_ld:chainID"
	heightKey  = "_ld:height"
)

// loadHeight returns the height of the last delivered block, 0 if none.
func loadHeight(kv ledger.ReadOnlyKVStore) (int64, error) {
	v, err := kv.Get([]byte(heightKey))
	if err != nil {
		return 0, errors.Wrap(err, "load height")
	}
	return orm.DecodeSequence(v)
}

func saveHeight(kv ledger.KVStore, height int64) error {
	if err := kv.Set([]byte(heightKey), orm.EncodeSequence(height)); err != nil {
		return errors.Wrap(err, "save height")
	}
	return nil
}

// loadChainID returns the chain id stored if any.
func loadChainID(kv ledger.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv ledger.KVStore, chainID string) error {
	if !ledger.IsValidChainID(chainID) {
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

package store

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
)

/**
TestSuite provides many methods that can be called in package-specific test code.
We just customize the store being tested (pass in constructor), the rest of the
logic is generic to the KVStore interface.

This is intended in particular to remove duplication between btree_test.go
and iavl/adapter_test.go, but can be used for any implementation of KVStore.
*/
type TestSuite struct {
	makeBase TestStoreConstructor
}

type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

// GetSet does basic sanity checks on our cache
//
// Other tests should handle deletes, setting same value,
// and general fuzzing
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	// make sure the btree is empty at start but returns results
	// that are written to it
	k, v := []byte("french"), []byte("fry")
	s.AssertGetHas(t, base, k, nil, false)
	assert.Nil(t, base.Set(k, v))
	s.AssertGetHas(t, base, k, v, true)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, k, v, true)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	s.AssertGetHas(t, cache, k2, nil, false)
	assert.Nil(t, cache.Set(k2, v2))
	s.AssertGetHas(t, cache, k2, v2, true)
	s.AssertGetHas(t, base, k2, nil, false)

	// we can write the cache to the base layer...
	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, k, v, true)
	s.AssertGetHas(t, base, k2, v2, true)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	s.AssertGetHas(t, c2, k, v, true)
	s.AssertGetHas(t, c2, k2, v2, true)
	assert.Nil(t, c2.Set(k3, v3))
	c2.Discard()
	s.AssertGetHas(t, base, k3, nil, false)

	// and commit another
	c3 := base.CacheWrap()
	assert.Nil(t, c3.Delete(k))
	assert.Nil(t, c3.Write())

	// make sure it commits proper
	s.AssertGetHas(t, base, k, nil, false)
	s.AssertGetHas(t, base, k2, v2, true)
	s.AssertGetHas(t, base, k3, nil, false)
}

// CacheConflicts checks that we can handle
// overwriting values and deleting underlying values
func (s *TestSuite) CacheConflicts(t *testing.T) {
	// make 10 keys and 20 values....
	ks := randKeys(10, 16)
	vs := randKeys(20, 40)

	type pair struct {
		key, value []byte
	}

	cases := map[string]struct {
		parentSet     []pair
		childSet      []pair
		childDelete   [][]byte
		parentQueries []pair // key is what we query, value is what we expect
		childQueries  []pair // key is what we query, value is what we expect
	}{
		"overwrite one, delete another, add a third": {
			parentSet:     []pair{{ks[1], vs[1]}, {ks[2], vs[2]}},
			childSet:      []pair{{ks[1], vs[11]}, {ks[3], vs[7]}},
			childDelete:   [][]byte{ks[2]},
			parentQueries: []pair{{ks[1], vs[1]}, {ks[2], vs[2]}, {ks[3], nil}},
			childQueries:  []pair{{ks[1], vs[11]}, {ks[2], nil}, {ks[3], vs[7]}},
		},
		"delete and set again": {
			parentSet:     []pair{{ks[4], vs[4]}},
			childSet:      []pair{{ks[4], vs[14]}},
			childDelete:   [][]byte{ks[5]},
			parentQueries: []pair{{ks[4], vs[4]}, {ks[5], nil}},
			childQueries:  []pair{{ks[4], vs[14]}, {ks[5], nil}},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, p := range tc.parentSet {
				assert.Nil(t, parent.Set(p.key, p.value))
			}

			child := parent.CacheWrap()
			for _, p := range tc.childSet {
				assert.Nil(t, child.Set(p.key, p.value))
			}
			for _, k := range tc.childDelete {
				assert.Nil(t, child.Delete(k))
			}

			// now check the parent is unaffected
			for _, q := range tc.parentQueries {
				s.AssertGetHas(t, parent, q.key, q.value, q.value != nil)
			}

			// the child shows changes
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, child, q.key, q.value, q.value != nil)
			}

			// write child to parent and make sure it also shows proper data
			assert.Nil(t, child.Write())
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, parent, q.key, q.value, q.value != nil)
			}
		})
	}
}

// Atomic checks that changes are applied only when the operation succeeds.
func (s *TestSuite) Atomic(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	k, v := []byte("pool"), []byte("funded")
	err := Atomic(base, func(db KVStore) error {
		if err := db.Set(k, v); err != nil {
			return err
		}
		return errors.Wrap(errors.ErrTransferFailed, "refused")
	})
	assert.IsErr(t, errors.ErrTransferFailed, err)
	s.AssertGetHas(t, base, k, nil, false)

	err = Atomic(base, func(db KVStore) error {
		return db.Set(k, v)
	})
	assert.Nil(t, err)
	s.AssertGetHas(t, base, k, v, true)
}

// AssertGetHas ensures that both Get and Has of given key return expected
// result.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func randBytes(length int) []byte {
	res := make([]byte, length)
	if _, err := rand.Read(res); err != nil {
		panic(err)
	}
	return res
}

// randKeys returns a slice of count keys, all of a given size
func randKeys(count, size int) [][]byte {
	res := make([][]byte, count)
	for i := 0; i < count; i++ {
		res[i] = randBytes(size)
	}
	return res
}

package cash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/store"
)

func balance(t testing.TB, c Controller, db ledger.ReadOnlyKVStore, addr ledger.Address) string {
	t.Helper()
	b, err := c.Balance(db, addr)
	require.NoError(t, err)
	return b.String()
}

func TestIssueCoins(t *testing.T) {
	kv := store.MemStore()
	addr := ledgertest.NewAddress()
	controller := NewController(NewBucket())

	assert.Equal(t, "0", balance(t, controller, kv, addr))

	require.NoError(t, controller.IssueCoins(kv, addr, ledger.NewAmount(500)))
	assert.Equal(t, "500", balance(t, controller, kv, addr))

	require.NoError(t, controller.IssueCoins(kv, addr, ledger.NewAmount(20)))
	assert.Equal(t, "520", balance(t, controller, kv, addr))

	err := controller.IssueCoins(kv, addr, ledger.Amount{})
	assert.True(t, errors.ErrAmount.Is(err))

	err = controller.IssueCoins(kv, nil, ledger.NewAmount(1))
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestMoveCoins(t *testing.T) {
	kv := store.MemStore()
	alice, bob := ledgertest.NewAddress(), ledgertest.NewAddress()
	controller := NewController(NewBucket())
	require.NoError(t, controller.IssueCoins(kv, alice, ledger.NewAmount(100)))

	cases := map[string]struct {
		src, dest ledger.Address
		amount    ledger.Amount
		wantErr   *errors.Error
		wantAlice string
		wantBob   string
	}{
		"move some": {
			src: alice, dest: bob, amount: ledger.NewAmount(40),
			wantAlice: "60", wantBob: "40",
		},
		"move all": {
			src: alice, dest: bob, amount: ledger.NewAmount(100),
			wantAlice: "0", wantBob: "100",
		},
		"too poor": {
			src: alice, dest: bob, amount: ledger.NewAmount(101),
			wantErr: errors.ErrInsufficientAmount, wantAlice: "100", wantBob: "0",
		},
		"empty sender": {
			src: bob, dest: alice, amount: ledger.NewAmount(1),
			wantErr: errors.ErrInsufficientAmount, wantAlice: "100", wantBob: "0",
		},
		"zero amount": {
			src: alice, dest: bob, amount: ledger.Amount{},
			wantErr: errors.ErrAmount, wantAlice: "100", wantBob: "0",
		},
		"to self": {
			src: alice, dest: alice, amount: ledger.NewAmount(30),
			wantAlice: "100", wantBob: "0",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.Wrap(kv)
			defer db.Discard()

			err := controller.MoveCoins(db, tc.src, tc.dest, tc.amount)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantAlice, balance(t, controller, db, alice))
			assert.Equal(t, tc.wantBob, balance(t, controller, db, bob))
		})
	}
}

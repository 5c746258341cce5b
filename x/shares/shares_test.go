package shares

import (
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
)

func addresses(n int) []ledger.Address {
	addrs := make([]ledger.Address, n)
	for i := range addrs {
		addrs[i] = ledgertest.NewAddress()
	}
	return addrs
}

func TestCreate(t *testing.T) {
	a, b, c := ledgertest.NewAddress(), ledgertest.NewAddress(), ledgertest.NewAddress()

	fiftyOne := addresses(51)
	fiftyOneBps := make([]uint32, 51)
	for i := range fiftyOneBps {
		fiftyOneBps[i] = 100
	}
	fifty := addresses(50)
	fiftyBps := make([]uint32, 50)
	for i := range fiftyBps {
		fiftyBps[i] = 200
	}

	cases := map[string]struct {
		addrs   []ledger.Address
		bps     []uint32
		wantErr *errors.Error
	}{
		"three beneficiaries": {
			addrs: []ledger.Address{a, b, c},
			bps:   []uint32{5000, 3000, 2000},
		},
		"single beneficiary takes all": {
			addrs: []ledger.Address{a},
			bps:   []uint32{10000},
		},
		"fifty beneficiaries": {
			addrs: fifty,
			bps:   fiftyBps,
		},
		"sum below whole": {
			addrs:   []ledger.Address{a, b, c},
			bps:     []uint32{5000, 3000, 1999},
			wantErr: errors.ErrInvalidShares,
		},
		"sum above whole": {
			addrs:   []ledger.Address{a, b},
			bps:     []uint32{5000, 5001},
			wantErr: errors.ErrInvalidShares,
		},
		"zero share": {
			addrs:   []ledger.Address{a, b, c},
			bps:     []uint32{5000, 5000, 0},
			wantErr: errors.ErrInvalidShares,
		},
		"duplicated address": {
			addrs:   []ledger.Address{a, a},
			bps:     []uint32{5000, 5000},
			wantErr: errors.ErrInvalidShares,
		},
		"empty address": {
			addrs:   []ledger.Address{a, nil},
			bps:     []uint32{5000, 5000},
			wantErr: errors.ErrInvalidShares,
		},
		"length mismatch": {
			addrs:   []ledger.Address{a, b},
			bps:     []uint32{10000},
			wantErr: errors.ErrInvalidShares,
		},
		"no beneficiaries": {
			wantErr: errors.ErrInvalidShares,
		},
		"too many beneficiaries": {
			addrs:   fiftyOne,
			bps:     fiftyOneBps,
			wantErr: errors.ErrTooManyEntries,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			table, err := Create(tc.addrs, tc.bps)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			assert.Equal(t, uint64(Whole), table.ActiveSum())
			assert.Nil(t, table.Validate())
			for i, addr := range tc.addrs {
				assert.Equal(t, tc.bps[i], table.ActiveShareOf(addr))
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	a, b, c := ledgertest.NewAddress(), ledgertest.NewAddress(), ledgertest.NewAddress()
	stranger := ledgertest.NewAddress()

	cases := map[string]struct {
		deactivate ledger.Address
		changes    []Change
		wantErr    *errors.Error
		wantBps    []uint32
	}{
		"swap shares within a single batch": {
			changes: []Change{{Address: a, ShareBps: 3000}, {Address: b, ShareBps: 5000}},
			wantBps: []uint32{3000, 5000, 2000},
		},
		"single change breaks the sum": {
			changes: []Change{{Address: a, ShareBps: 4000}},
			wantErr: errors.ErrInvalidShares,
			wantBps: []uint32{5000, 3000, 2000},
		},
		"unknown beneficiary": {
			changes: []Change{{Address: stranger, ShareBps: 1}},
			wantErr: errors.ErrNotFound,
			wantBps: []uint32{5000, 3000, 2000},
		},
		"zero share": {
			changes: []Change{{Address: a, ShareBps: 0}, {Address: b, ShareBps: 8000}},
			wantErr: errors.ErrInvalidShares,
			wantBps: []uint32{5000, 3000, 2000},
		},
		"inactive beneficiary cannot be updated": {
			deactivate: c,
			changes:    []Change{{Address: c, ShareBps: 2000}},
			wantErr:    errors.ErrNotFound,
			wantBps:    []uint32{5000, 3000, 0},
		},
		"restore the sum after deactivation": {
			deactivate: c,
			changes:    []Change{{Address: a, ShareBps: 7000}},
			wantBps:    []uint32{7000, 3000, 0},
		},
		"no changes": {
			wantErr: errors.ErrEmpty,
			wantBps: []uint32{5000, 3000, 2000},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			table, err := Create([]ledger.Address{a, b, c}, []uint32{5000, 3000, 2000})
			assert.Nil(t, err)
			if tc.deactivate != nil {
				assert.Nil(t, table.Deactivate(tc.deactivate))
			}

			err = table.Update(tc.changes...)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			for i, addr := range []ledger.Address{a, b, c} {
				if got := table.ActiveShareOf(addr); got != tc.wantBps[i] {
					t.Errorf("beneficiary %d: want %d, got %d", i, tc.wantBps[i], got)
				}
			}
			if tc.wantErr == nil {
				assert.Equal(t, uint64(Whole), table.ActiveSum())
			}
		})
	}
}

func TestDeactivate(t *testing.T) {
	a, b := ledgertest.NewAddress(), ledgertest.NewAddress()
	table, err := Create([]ledger.Address{a, b}, []uint32{6000, 4000})
	assert.Nil(t, err)

	assert.Nil(t, table.Deactivate(b))
	assert.Equal(t, uint32(0), table.ActiveShareOf(b))
	assert.Equal(t, uint64(6000), table.ActiveSum())
	// The entry is kept.
	assert.Equal(t, 2, len(table.Entries))
	assert.Equal(t, false, table.Entries[1].Active)

	assert.IsErr(t, errors.ErrState, table.Deactivate(b))
	assert.IsErr(t, errors.ErrNotFound, table.Deactivate(ledgertest.NewAddress()))
	assert.Nil(t, table.Validate())
}

func TestCopyIsIndependent(t *testing.T) {
	a, b := ledgertest.NewAddress(), ledgertest.NewAddress()
	table, err := Create([]ledger.Address{a, b}, []uint32{6000, 4000})
	assert.Nil(t, err)

	cp := table.Copy()
	assert.Nil(t, cp.Update(Change{Address: a, ShareBps: 4000}, Change{Address: b, ShareBps: 6000}))
	assert.Equal(t, uint32(6000), table.ActiveShareOf(a))
	assert.Equal(t, uint32(4000), cp.ActiveShareOf(a))
}

func TestValidate(t *testing.T) {
	a := ledgertest.NewAddress()
	cases := map[string]struct {
		table   Table
		wantErr *errors.Error
	}{
		"valid": {
			table: Table{Entries: []Share{{Address: a, ShareBps: Whole, Active: true}}},
		},
		"empty": {
			table:   Table{},
			wantErr: errors.ErrEmpty,
		},
		"duplicate": {
			table: Table{Entries: []Share{
				{Address: a, ShareBps: 5000, Active: true},
				{Address: a, ShareBps: 5000, Active: false},
			}},
			wantErr: errors.ErrDuplicate,
		},
		"active sum above whole": {
			table: Table{Entries: []Share{
				{Address: a, ShareBps: 6000, Active: true},
				{Address: ledgertest.NewAddress(), ShareBps: 6000, Active: true},
			}},
			wantErr: errors.ErrInvalidShares,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.FieldError(t, tc.table.Validate(), "Entries", tc.wantErr)
		})
	}
}

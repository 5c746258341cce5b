package royalty

import (
	"context"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/history"
	"github.com/iov-one/ledger/x/shares"
)

type fixture struct {
	db      ledger.KVStore
	ctrl    *Controller
	bank    cash.Controller
	history *history.Recorder
	payer   ledger.Address
	assets  []string
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := store.MemStore()
	bank := cash.NewController(cash.NewBucket())
	payer := ledgertest.NewAddress()
	assert.Nil(t, bank.IssueCoins(db, payer, ledger.Ether(1000)))
	rec := history.NewRecorder()
	return &fixture{
		db:      db,
		ctrl:    NewController(bank, rec),
		bank:    bank,
		history: rec,
		payer:   payer,
	}
}

func (f *fixture) pool(t testing.TB, assetID string, bps ...uint32) []ledger.Address {
	t.Helper()
	addrs := make([]ledger.Address, len(bps))
	for i := range addrs {
		addrs[i] = ledgertest.NewAddress()
	}
	_, err := f.ctrl.CreatePool(ledgertest.Ctx(1), f.db, assetID, addrs, bps)
	assert.Nil(t, err)
	f.assets = append(f.assets, assetID)
	return addrs
}

func (f *fixture) pay(t testing.TB, assetID string, amount ledger.Amount) {
	t.Helper()
	assert.Nil(t, f.ctrl.Pay(ledgertest.Ctx(2), f.db, assetID, f.payer, amount))
}

func (f *fixture) withdrawable(t testing.TB, assetID string, addr ledger.Address) ledger.Amount {
	t.Helper()
	amount, err := f.ctrl.Withdrawable(f.db, assetID, addr)
	assert.Nil(t, err)
	return amount
}

// assertConservation checks that every pool satisfies
// received == distributed + pending and that the escrow holds exactly the
// pending funds of all pools.
func (f *fixture) assertConservation(t testing.TB) {
	t.Helper()
	var allPending ledger.Amount
	for _, id := range f.assets {
		received, distributed, pending, err := f.ctrl.PoolInfo(f.db, id)
		assert.Nil(t, err)
		assert.AmountEqual(t, received, distributed.Add(pending))
		allPending = allPending.Add(pending)
	}
	escrow, err := f.bank.Balance(f.db, EscrowAccount())
	assert.Nil(t, err)
	assert.AmountEqual(t, allPending, escrow)
}

func TestThreeBeneficiariesScenario(t *testing.T) {
	f := newFixture(t)
	addrs := f.pool(t, "asset-1", 5000, 3000, 2000)

	f.pay(t, "asset-1", ledger.Ether(10))
	assert.AmountEqual(t, ledger.Ether(5), f.withdrawable(t, "asset-1", addrs[0]))
	assert.AmountEqual(t, ledger.Ether(3), f.withdrawable(t, "asset-1", addrs[1]))
	assert.AmountEqual(t, ledger.Ether(2), f.withdrawable(t, "asset-1", addrs[2]))
	f.assertConservation(t)

	paid, err := f.ctrl.Withdraw(ledgertest.Ctx(3), f.db, "asset-1", addrs[0])
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.Ether(5), paid)
	assert.AmountEqual(t, ledger.Amount{}, f.withdrawable(t, "asset-1", addrs[0]))

	_, distributed, pending, err := f.ctrl.PoolInfo(f.db, "asset-1")
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.Ether(5), distributed)
	assert.AmountEqual(t, ledger.Ether(5), pending)
	f.assertConservation(t)

	balance, err := f.bank.Balance(f.db, addrs[0])
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.Ether(5), balance)

	withdrawn, err := f.ctrl.WithdrawnAmount(f.db, "asset-1", addrs[0])
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.Ether(5), withdrawn)

	// Withdrawing again without receiving anything fails.
	_, err = f.ctrl.Withdraw(ledgertest.Ctx(4), f.db, "asset-1", addrs[0])
	assert.IsErr(t, errors.ErrNothingToWithdraw, err)

	// Every payment is recorded.
	n, err := f.history.Count(f.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), n)
	positions, err := f.history.HistoryOf(f.db, addrs[0])
	assert.Nil(t, err)
	assert.Equal(t, []uint64{0}, positions)
	rec, err := f.history.Get(f.db, 0)
	assert.Nil(t, err)
	assert.Equal(t, "asset-1", rec.AssetID)
	assert.Equal(t, int64(3), rec.Height)
	assert.AmountEqual(t, ledger.Ether(5), rec.Amount)
}

func TestCreatePool(t *testing.T) {
	fiftyOne := make([]uint32, 51)
	for i := range fiftyOne {
		fiftyOne[i] = 1
	}
	fiftyOne[50] = 10000 - 50

	cases := map[string]struct {
		assetID string
		bps     []uint32
		wantErr *errors.Error
	}{
		"valid":               {assetID: "asset-2", bps: []uint32{5000, 5000}},
		"shares sum to 9999":  {assetID: "asset-2", bps: []uint32{5000, 4999}, wantErr: errors.ErrInvalidShares},
		"51 beneficiaries":    {assetID: "asset-2", bps: fiftyOne, wantErr: errors.ErrTooManyEntries},
		"pool already exists": {assetID: "asset-1", bps: []uint32{10000}, wantErr: errors.ErrDuplicate},
		"invalid asset":       {assetID: "a", bps: []uint32{10000}, wantErr: errors.ErrInput},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			f.pool(t, "asset-1", 10000)

			addrs := make([]ledger.Address, len(tc.bps))
			for i := range addrs {
				addrs[i] = ledgertest.NewAddress()
			}
			p, err := f.ctrl.CreatePool(ledgertest.Ctx(7), f.db, tc.assetID, addrs, tc.bps)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			assert.Equal(t, int64(7), p.CreatedHeight)
			assert.Equal(t, uint64(shares.Whole), p.Beneficiaries.ActiveSum())
			f.assets = append(f.assets, tc.assetID)
			f.assertConservation(t)
		})
	}
}

func TestReceive(t *testing.T) {
	f := newFixture(t)
	f.pool(t, "asset-1", 10000)

	err := f.ctrl.Receive(context.Background(), f.db, "asset-1", ledger.Amount{})
	assert.IsErr(t, errors.ErrAmount, err)
	err = f.ctrl.Receive(context.Background(), f.db, "no-pool", ledger.NewAmount(1))
	assert.IsErr(t, errors.ErrNotFound, err)

	// Payer cannot afford it, nothing is recorded.
	err = f.ctrl.Pay(context.Background(), f.db, "asset-1", ledgertest.NewAddress(), ledger.NewAmount(1))
	assert.IsErr(t, errors.ErrTransferFailed, err)
	received, _, _, err := f.ctrl.PoolInfo(f.db, "asset-1")
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.Amount{}, received)

	f.pay(t, "asset-1", ledger.NewAmount(3))
	f.pay(t, "asset-1", ledger.NewAmount(4))
	received, _, pending, err := f.ctrl.PoolInfo(f.db, "asset-1")
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(7), received)
	assert.AmountEqual(t, ledger.NewAmount(7), pending)
	f.assertConservation(t)
}

func TestWithdrawableIsMonotone(t *testing.T) {
	f := newFixture(t)
	addrs := f.pool(t, "asset-1", 3333, 3333, 3334)

	var prev ledger.Amount
	for i, amount := range []uint64{1, 2, 7, 9999, 1, 3, 100000, 5} {
		f.pay(t, "asset-1", ledger.NewAmount(amount))
		got := f.withdrawable(t, "asset-1", addrs[0])
		if got.Cmp(prev) < 0 {
			t.Fatalf("step %d: withdrawable decreased from %s to %s", i, prev, got)
		}
		prev = got

		// Another beneficiary withdrawing does not influence it.
		if i%2 == 0 {
			_, err := f.ctrl.Withdraw(ledgertest.Ctx(5), f.db, "asset-1", addrs[1])
			if err != nil && !errors.ErrNothingToWithdraw.Is(err) {
				t.Fatalf("step %d: %+v", i, err)
			}
		}
		f.assertConservation(t)
	}
}

func TestRoundingNeverOverpays(t *testing.T) {
	f := newFixture(t)
	addrs := f.pool(t, "asset-1", 3333, 3333, 3334)

	for i := 0; i < 10; i++ {
		f.pay(t, "asset-1", ledger.NewAmount(7))
		for _, a := range addrs {
			_, err := f.ctrl.Withdraw(ledgertest.Ctx(5), f.db, "asset-1", a)
			if err != nil && !errors.ErrNothingToWithdraw.Is(err) {
				t.Fatalf("round %d: %+v", i, err)
			}
		}
		f.assertConservation(t)
	}
}

func TestBatchWithdraw(t *testing.T) {
	f := newFixture(t)
	me := ledgertest.NewAddress()
	other := ledgertest.NewAddress()
	for _, id := range []string{"asset-1", "asset-2", "asset-3"} {
		_, err := f.ctrl.CreatePool(ledgertest.Ctx(1), f.db, id, []ledger.Address{me, other}, []uint32{5000, 5000})
		assert.Nil(t, err)
		f.assets = append(f.assets, id)
	}
	f.pay(t, "asset-1", ledger.NewAmount(100))
	f.pay(t, "asset-3", ledger.NewAmount(40))

	ids := []string{"asset-1", "asset-2", "missing", "asset-3", "asset-1"}
	paid, err := f.ctrl.BatchWithdraw(ledgertest.Ctx(9), f.db, ids, me)
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(70), paid)

	balance, err := f.bank.Balance(f.db, me)
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(70), balance)

	// One record per paying pool.
	positions, err := f.history.HistoryOf(f.db, me)
	assert.Nil(t, err)
	assert.Equal(t, []uint64{0, 1}, positions)
	f.assertConservation(t)

	_, err = f.ctrl.BatchWithdraw(ledgertest.Ctx(10), f.db, ids, me)
	assert.IsErr(t, errors.ErrNothingToWithdraw, err)

	tooMany := make([]string, MaxBatch+1)
	for i := range tooMany {
		tooMany[i] = "asset-1"
	}
	_, err = f.ctrl.BatchWithdraw(ledgertest.Ctx(10), f.db, tooMany, other)
	assert.IsErr(t, errors.ErrTooManyEntries, err)

	paid, err = f.ctrl.BatchWithdraw(ledgertest.Ctx(10), f.db, tooMany[:MaxBatch], other)
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(50), paid)
}

func TestRemoveAndUpdateBeneficiaries(t *testing.T) {
	f := newFixture(t)
	addrs := f.pool(t, "asset-1", 5000, 5000)
	f.pay(t, "asset-1", ledger.NewAmount(100))

	_, err := f.ctrl.Withdraw(ledgertest.Ctx(3), f.db, "asset-1", addrs[1])
	assert.Nil(t, err)
	assert.Nil(t, f.ctrl.RemoveBeneficiary(ledgertest.Ctx(4), f.db, "asset-1", addrs[1]))
	assert.IsErr(t, errors.ErrState, f.ctrl.RemoveBeneficiary(ledgertest.Ctx(4), f.db, "asset-1", addrs[1]))
	assert.IsErr(t, errors.ErrNotFound, f.ctrl.RemoveBeneficiary(ledgertest.Ctx(4), f.db, "missing", addrs[1]))

	// Inactive beneficiary cannot withdraw, history remains.
	assert.AmountEqual(t, ledger.Amount{}, f.withdrawable(t, "asset-1", addrs[1]))
	withdrawn, err := f.ctrl.WithdrawnAmount(f.db, "asset-1", addrs[1])
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(50), withdrawn)

	// Restore the whole for the remaining beneficiary.
	err = f.ctrl.UpdateBeneficiaries(ledgertest.Ctx(5), f.db, "asset-1", shares.Change{Address: addrs[0], ShareBps: 9000})
	assert.IsErr(t, errors.ErrInvalidShares, err)
	err = f.ctrl.UpdateBeneficiaries(ledgertest.Ctx(5), f.db, "asset-1", shares.Change{Address: addrs[0], ShareBps: 10000})
	assert.Nil(t, err)
	err = f.ctrl.UpdateBeneficiaries(ledgertest.Ctx(5), f.db, "missing", shares.Change{Address: addrs[0], ShareBps: 10000})
	assert.IsErr(t, errors.ErrNotFound, err)

	// Entitlement is computed against all funds ever received, which
	// exceeds what is left in the pool.
	assert.AmountEqual(t, ledger.NewAmount(100), f.withdrawable(t, "asset-1", addrs[0]))
	_, err = f.ctrl.Withdraw(ledgertest.Ctx(6), f.db, "asset-1", addrs[0])
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
	f.assertConservation(t)

	entries, err := f.ctrl.Beneficiaries(f.db, "asset-1")
	assert.Nil(t, err)
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, false, entries[1].Active)
}

// failingBank refuses every transfer.
type failingBank struct{}

func (failingBank) MoveCoins(ledger.KVStore, ledger.Address, ledger.Address, ledger.Amount) error {
	return errors.Wrap(errors.ErrHuman, "bank is closed")
}

func TestTransferFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	addrs := f.pool(t, "asset-1", 10000)
	f.pay(t, "asset-1", ledger.NewAmount(100))

	ctrl := NewController(failingBank{}, f.history)
	_, err := ctrl.Withdraw(ledgertest.Ctx(3), f.db, "asset-1", addrs[0])
	assert.IsErr(t, errors.ErrTransferFailed, err)
	_, err = ctrl.BatchWithdraw(ledgertest.Ctx(3), f.db, []string{"asset-1"}, addrs[0])
	assert.IsErr(t, errors.ErrTransferFailed, err)

	assert.AmountEqual(t, ledger.NewAmount(100), f.withdrawable(t, "asset-1", addrs[0]))
	_, distributed, _, err := f.ctrl.PoolInfo(f.db, "asset-1")
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.Amount{}, distributed)
	n, err := f.history.Count(f.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), n)
	f.assertConservation(t)
}

// reentrantBank calls back into the controller while a transfer is in
// progress.
type reentrantBank struct {
	cash.Controller
	ctrl      *Controller
	assetID   string
	innerErrs []error
}

func (b *reentrantBank) MoveCoins(db ledger.KVStore, src, dest ledger.Address, amount ledger.Amount) error {
	if src.Equals(EscrowAccount()) {
		_, err := b.ctrl.Withdraw(context.Background(), db, b.assetID, dest)
		b.innerErrs = append(b.innerErrs, err)
	}
	return b.Controller.MoveCoins(db, src, dest, amount)
}

func TestReentrantWithdrawIsRejected(t *testing.T) {
	f := newFixture(t)
	addrs := f.pool(t, "asset-1", 10000)
	f.pay(t, "asset-1", ledger.NewAmount(100))

	bank := &reentrantBank{Controller: f.bank, assetID: "asset-1"}
	bank.ctrl = NewController(bank, f.history)

	paid, err := bank.ctrl.Withdraw(ledgertest.Ctx(3), f.db, "asset-1", addrs[0])
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(100), paid)
	assert.Equal(t, 1, len(bank.innerErrs))
	assert.IsErr(t, errors.ErrReentrancy, bank.innerErrs[0])

	balance, err := f.bank.Balance(f.db, addrs[0])
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(100), balance)
	f.assertConservation(t)

	// The guard is released once the operation is over.
	_, err = bank.ctrl.Withdraw(ledgertest.Ctx(4), f.db, "asset-1", addrs[0])
	assert.IsErr(t, errors.ErrNothingToWithdraw, err)
}

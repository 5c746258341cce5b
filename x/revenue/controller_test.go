package revenue

import (
	"context"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/token"
)

type fixture struct {
	db     ledger.KVStore
	tokens *token.Controller
	bank   cash.Controller
	ctrl   *Controller
	owner  ledger.Address
	payer  ledger.Address
}

// newFixture creates vault-1 with a supply of 1,000,000 fractions held by
// the owner.
func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := store.MemStore()
	tokens := token.NewController()
	bank := cash.NewController(cash.NewBucket())
	owner, payer := ledgertest.NewAddress(), ledgertest.NewAddress()
	_, err := tokens.CreateVault(db, "vault-1", owner, ledger.NewAmount(1000000), "")
	assert.Nil(t, err)
	assert.Nil(t, bank.IssueCoins(db, payer, ledger.Ether(1000)))
	return &fixture{
		db:     db,
		tokens: tokens,
		bank:   bank,
		ctrl:   NewController(tokens, bank),
		owner:  owner,
		payer:  payer,
	}
}

func (f *fixture) claimable(t testing.TB, holder ledger.Address) ledger.Amount {
	t.Helper()
	amount, err := f.ctrl.Claimable(f.db, "vault-1", holder)
	assert.Nil(t, err)
	return amount
}

func (f *fixture) assertEscrow(t testing.TB) {
	t.Helper()
	r, err := f.ctrl.State(f.db, "vault-1")
	assert.Nil(t, err)
	escrow, err := f.bank.Balance(f.db, EscrowAccount("vault-1"))
	assert.Nil(t, err)
	assert.AmountEqual(t, r.Undistributed(), escrow)
}

func TestClaimScenario(t *testing.T) {
	f := newFixture(t)
	holder := ledgertest.NewAddress()
	assert.Nil(t, f.tokens.Transfer(f.db, "vault-1", f.owner, holder, ledger.NewAmount(200000)))

	assert.AmountEqual(t, ledger.Amount{}, f.claimable(t, holder))

	assert.Nil(t, f.ctrl.Deposit(ledgertest.Ctx(1), f.db, "vault-1", f.payer, ledger.Ether(5)))
	assert.AmountEqual(t, ledger.Ether(1), f.claimable(t, holder))
	assert.AmountEqual(t, ledger.Ether(4), f.claimable(t, f.owner))
	f.assertEscrow(t)

	paid, err := f.ctrl.Claim(ledgertest.Ctx(2), f.db, "vault-1", holder)
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.Ether(1), paid)
	assert.AmountEqual(t, ledger.Amount{}, f.claimable(t, holder))
	f.assertEscrow(t)

	_, err = f.ctrl.Claim(ledgertest.Ctx(3), f.db, "vault-1", holder)
	assert.IsErr(t, errors.ErrNothingToClaim, err)

	assert.Nil(t, f.ctrl.Deposit(ledgertest.Ctx(4), f.db, "vault-1", f.payer, ledger.Ether(5)))
	assert.AmountEqual(t, ledger.Ether(1), f.claimable(t, holder))

	balance, err := f.bank.Balance(f.db, holder)
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.Ether(1), balance)

	claimed, err := f.ctrl.ClaimedAmount(f.db, "vault-1", holder)
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.Ether(1), claimed)

	r, err := f.ctrl.State(f.db, "vault-1")
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.Ether(10), r.TotalRevenue)
	assert.AmountEqual(t, ledger.Ether(1), r.TotalDistributed)
	f.assertEscrow(t)
}

func TestAddRevenue(t *testing.T) {
	cases := map[string]struct {
		vaultID string
		amount  ledger.Amount
		redeem  bool
		wantErr *errors.Error
	}{
		"add":           {vaultID: "vault-1", amount: ledger.NewAmount(1)},
		"zero amount":   {vaultID: "vault-1", wantErr: errors.ErrAmount},
		"unknown vault": {vaultID: "vault-2", amount: ledger.NewAmount(1), wantErr: errors.ErrNotFound},
		"redeemed":      {vaultID: "vault-1", amount: ledger.NewAmount(1), redeem: true, wantErr: errors.ErrRedeemed},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			if tc.redeem {
				assert.Nil(t, f.tokens.Redeem(f.db, "vault-1", f.owner))
			}
			err := f.ctrl.AddRevenue(context.Background(), f.db, tc.vaultID, tc.amount)
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}

func TestClaimAfterRedeem(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.ctrl.Deposit(ledgertest.Ctx(1), f.db, "vault-1", f.payer, ledger.NewAmount(100)))
	assert.Nil(t, f.tokens.Redeem(f.db, "vault-1", f.owner))

	paid, err := f.ctrl.Claim(ledgertest.Ctx(2), f.db, "vault-1", f.owner)
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(100), paid)
	f.assertEscrow(t)
}

func TestCurrentBalanceIsUsed(t *testing.T) {
	f := newFixture(t)
	a, b := ledgertest.NewAddress(), ledgertest.NewAddress()
	assert.Nil(t, f.tokens.Transfer(f.db, "vault-1", f.owner, a, ledger.NewAmount(500000)))
	assert.Nil(t, f.tokens.Transfer(f.db, "vault-1", f.owner, b, ledger.NewAmount(500000)))
	assert.Nil(t, f.ctrl.Deposit(ledgertest.Ctx(1), f.db, "vault-1", f.payer, ledger.NewAmount(100)))

	_, err := f.ctrl.Claim(ledgertest.Ctx(2), f.db, "vault-1", a)
	assert.Nil(t, err)

	// Fractions moved after revenue accrued carry the entitlement to it.
	assert.Nil(t, f.tokens.Transfer(f.db, "vault-1", a, b, ledger.NewAmount(500000)))
	assert.AmountEqual(t, ledger.NewAmount(100), f.claimable(t, b))

	// Only 50 is left to distribute.
	_, err = f.ctrl.Claim(ledgertest.Ctx(3), f.db, "vault-1", b)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
	f.assertEscrow(t)
}

type failingBank struct{}

func (failingBank) MoveCoins(ledger.KVStore, ledger.Address, ledger.Address, ledger.Amount) error {
	return errors.Wrap(errors.ErrHuman, "bank is closed")
}

func TestTransferFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.ctrl.Deposit(ledgertest.Ctx(1), f.db, "vault-1", f.payer, ledger.NewAmount(100)))

	ctrl := NewController(f.tokens, failingBank{})
	_, err := ctrl.Claim(ledgertest.Ctx(2), f.db, "vault-1", f.owner)
	assert.IsErr(t, errors.ErrTransferFailed, err)
	err = ctrl.Deposit(ledgertest.Ctx(2), f.db, "vault-1", f.payer, ledger.NewAmount(100))
	assert.IsErr(t, errors.ErrTransferFailed, err)

	assert.AmountEqual(t, ledger.NewAmount(100), f.claimable(t, f.owner))
	r, err := f.ctrl.State(f.db, "vault-1")
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(100), r.TotalRevenue)
	assert.AmountEqual(t, ledger.Amount{}, r.TotalDistributed)
	f.assertEscrow(t)
}

type reentrantBank struct {
	cash.Controller
	ctrl     *Controller
	innerErr error
}

func (b *reentrantBank) MoveCoins(db ledger.KVStore, src, dest ledger.Address, amount ledger.Amount) error {
	if src.Equals(EscrowAccount("vault-1")) {
		_, b.innerErr = b.ctrl.Claim(context.Background(), db, "vault-1", dest)
	}
	return b.Controller.MoveCoins(db, src, dest, amount)
}

func TestReentrantClaimIsRejected(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.ctrl.Deposit(ledgertest.Ctx(1), f.db, "vault-1", f.payer, ledger.NewAmount(100)))

	bank := &reentrantBank{Controller: f.bank}
	bank.ctrl = NewController(f.tokens, bank)
	paid, err := bank.ctrl.Claim(ledgertest.Ctx(2), f.db, "vault-1", f.owner)
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(100), paid)
	assert.IsErr(t, errors.ErrReentrancy, bank.innerErr)
	f.assertEscrow(t)
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.ctrl.Deposit(ledgertest.Ctx(1), f.db, "vault-1", f.payer, ledger.NewAmount(100)))

	qr := ledger.NewQueryRouter()
	RegisterQuery(qr, f.tokens)

	res, err := qr.Handler("/revenue/state").Query(f.db, []byte(`{"vault_id": "vault-1"}`))
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(100), res.(*Revenue).TotalRevenue)

	res, err = qr.Handler("/revenue/claimable").Query(f.db, []byte(`{"vault_id": "vault-1", "address": "`+f.owner.String()+`"}`))
	assert.Nil(t, err)
	assert.AmountEqual(t, ledger.NewAmount(100), res.(ledger.Amount))

	_, err = qr.Handler("/revenue/state").Query(f.db, []byte(`{"vault_id": "vault-404"}`))
	assert.IsErr(t, errors.ErrNotFound, err)
}

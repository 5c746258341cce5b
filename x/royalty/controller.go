package royalty

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/store"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/history"
	"github.com/iov-one/ledger/x/shares"
)

// MaxBatch is the maximum number of pools a single batch withdrawal can
// process.
const MaxBatch = 20

var whole = ledger.NewAmount(shares.Whole)

// Bank moves value between accounts. cash.Controller implements it.
type Bank interface {
	MoveCoins(db ledger.KVStore, src, dest ledger.Address, amount ledger.Amount) error
}

// EscrowAccount returns the address of the account holding funds of all
// royalty pools.
func EscrowAccount() ledger.Address {
	return ledger.NewCondition("royalty", "escrow", []byte("pools")).Address()
}

// Controller implements all royalty pool operations. Authorization is
// done by the handlers.
type Controller struct {
	pools       orm.ModelBucket
	withdrawals orm.ModelBucket
	history     *history.Recorder
	bank        Bank
	escrow      ledger.Address
	guard       x.Guard
}

// NewController returns a controller paying out through given bank and
// recording every payment in the history.
func NewController(bank Bank, rec *history.Recorder) *Controller {
	return &Controller{
		pools:       NewPoolBucket(),
		withdrawals: NewWithdrawalBucket(),
		history:     rec,
		bank:        bank,
		escrow:      EscrowAccount(),
	}
}

// CreatePool creates a pool for given asset. Each asset can have only one
// pool.
func (c *Controller) CreatePool(ctx context.Context, db ledger.KVStore, assetID string, addresses []ledger.Address, bps []uint32) (*Pool, error) {
	if !IsAssetID(assetID) {
		return nil, errors.Wrapf(errors.ErrInput, "asset id %q", assetID)
	}
	switch err := c.pools.Has(db, []byte(assetID)); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "pool for asset %q", assetID)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	table, err := shares.Create(addresses, bps)
	if err != nil {
		return nil, err
	}
	height, _ := ledger.GetHeight(ctx)
	p := &Pool{
		AssetID:       assetID,
		Beneficiaries: *table,
		CreatedHeight: height,
	}
	if err := c.pools.Put(db, []byte(assetID), p); err != nil {
		return nil, errors.Wrap(err, "cannot save pool")
	}
	ledger.GetLogger(ctx).Info("royalty pool created",
		"asset", assetID, "beneficiaries", len(addresses))
	return p, nil
}

// Pool returns the pool of given asset.
func (c *Controller) Pool(db ledger.ReadOnlyKVStore, assetID string) (*Pool, error) {
	var p Pool
	if err := c.pools.One(db, []byte(assetID), &p); err != nil {
		return nil, errors.Wrapf(err, "pool for asset %q", assetID)
	}
	return &p, nil
}

// Receive records funds received by the pool. It does not move any value,
// use Pay to deposit funds and record them at once.
func (c *Controller) Receive(ctx context.Context, db ledger.KVStore, assetID string, amount ledger.Amount) error {
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "must be greater than zero")
	}
	p, err := c.Pool(db, assetID)
	if err != nil {
		return err
	}
	p.TotalReceived = p.TotalReceived.Add(amount)
	p.PendingDistribution = p.PendingDistribution.Add(amount)
	if err := c.pools.Put(db, []byte(assetID), p); err != nil {
		return errors.Wrap(err, "cannot save pool")
	}
	ledger.GetLogger(ctx).Info("royalty received", "asset", assetID, "amount", amount.String())
	return nil
}

// Pay moves funds of the payer to the escrow and records them as received
// by the pool.
func (c *Controller) Pay(ctx context.Context, db ledger.KVStore, assetID string, payer ledger.Address, amount ledger.Amount) error {
	return c.guard.Do(func() error {
		return store.Atomic(db, func(db ledger.KVStore) error {
			if err := c.Receive(ctx, db, assetID, amount); err != nil {
				return err
			}
			if err := c.bank.MoveCoins(db, payer, c.escrow, amount); err != nil {
				return errors.Wrapf(errors.ErrTransferFailed, "deposit: %s", err)
			}
			return nil
		})
	})
}

// Withdrawable returns the amount the beneficiary can withdraw right now.
// Inactive beneficiaries cannot withdraw anything.
func (c *Controller) Withdrawable(db ledger.ReadOnlyKVStore, assetID string, beneficiary ledger.Address) (ledger.Amount, error) {
	p, err := c.Pool(db, assetID)
	if err != nil {
		return ledger.Amount{}, err
	}
	return c.withdrawable(db, p, beneficiary)
}

func (c *Controller) withdrawable(db ledger.ReadOnlyKVStore, p *Pool, beneficiary ledger.Address) (ledger.Amount, error) {
	bps := p.Beneficiaries.ActiveShareOf(beneficiary)
	if bps == 0 {
		return ledger.Amount{}, nil
	}
	entitled, err := p.TotalReceived.MulDiv(ledger.NewAmount(uint64(bps)), whole)
	if err != nil {
		return ledger.Amount{}, err
	}
	withdrawn, err := c.WithdrawnAmount(db, p.AssetID, beneficiary)
	if err != nil {
		return ledger.Amount{}, err
	}
	return entitled.SubFloor(withdrawn), nil
}

// WithdrawnAmount returns the total withdrawn by the beneficiary from the
// pool, including withdrawals made while it was active.
func (c *Controller) WithdrawnAmount(db ledger.ReadOnlyKVStore, assetID string, beneficiary ledger.Address) (ledger.Amount, error) {
	var w Withdrawal
	switch err := c.withdrawals.One(db, withdrawalKey(assetID, beneficiary), &w); {
	case err == nil:
		return w.Amount, nil
	case errors.ErrNotFound.Is(err):
		return ledger.Amount{}, nil
	default:
		return ledger.Amount{}, err
	}
}

// Withdraw pays the beneficiary everything it can withdraw from the pool.
func (c *Controller) Withdraw(ctx context.Context, db ledger.KVStore, assetID string, beneficiary ledger.Address) (ledger.Amount, error) {
	var paid ledger.Amount
	err := c.guard.Do(func() error {
		return store.Atomic(db, func(db ledger.KVStore) error {
			p, err := c.Pool(db, assetID)
			if err != nil {
				return err
			}
			amount, err := c.settle(ctx, db, p, beneficiary)
			if err != nil {
				return err
			}
			if amount.IsZero() {
				return errors.Wrapf(errors.ErrNothingToWithdraw, "asset %q", assetID)
			}
			if err := c.transfer(db, beneficiary, amount); err != nil {
				return err
			}
			paid = amount
			return nil
		})
	})
	if err != nil {
		return ledger.Amount{}, err
	}
	ledger.GetLogger(ctx).Info("royalty withdrawn",
		"asset", assetID, "beneficiary", beneficiary.String(), "amount", paid.String())
	return paid, nil
}

// BatchWithdraw withdraws from many pools at once and pays the total with a
// single transfer. Pools with nothing to withdraw, and assets without a
// pool, are skipped.
func (c *Controller) BatchWithdraw(ctx context.Context, db ledger.KVStore, assetIDs []string, beneficiary ledger.Address) (ledger.Amount, error) {
	if len(assetIDs) > MaxBatch {
		return ledger.Amount{}, errors.Wrapf(errors.ErrTooManyEntries, "%d assets, max %d", len(assetIDs), MaxBatch)
	}
	var total ledger.Amount
	err := c.guard.Do(func() error {
		return store.Atomic(db, func(db ledger.KVStore) error {
			for _, id := range assetIDs {
				p, err := c.Pool(db, id)
				if errors.ErrNotFound.Is(err) {
					continue
				}
				if err != nil {
					return err
				}
				amount, err := c.settle(ctx, db, p, beneficiary)
				if err != nil {
					return errors.Wrapf(err, "asset %q", id)
				}
				total = total.Add(amount)
			}
			if total.IsZero() {
				return errors.Wrap(errors.ErrNothingToWithdraw, "all pools")
			}
			return c.transfer(db, beneficiary, total)
		})
	})
	if err != nil {
		return ledger.Amount{}, err
	}
	ledger.GetLogger(ctx).Info("royalty batch withdrawn",
		"assets", len(assetIDs), "beneficiary", beneficiary.String(), "amount", total.String())
	return total, nil
}

// settle books the withdrawal of everything the beneficiary can withdraw
// from the pool and returns the amount. Nothing is booked for a zero
// amount.
func (c *Controller) settle(ctx context.Context, db ledger.KVStore, p *Pool, beneficiary ledger.Address) (ledger.Amount, error) {
	amount, err := c.withdrawable(db, p, beneficiary)
	if err != nil || amount.IsZero() {
		return ledger.Amount{}, err
	}
	pending, err := p.PendingDistribution.Sub(amount)
	if err != nil {
		return ledger.Amount{}, errors.Wrap(err, "pending distribution")
	}
	withdrawn, err := c.WithdrawnAmount(db, p.AssetID, beneficiary)
	if err != nil {
		return ledger.Amount{}, err
	}
	w := &Withdrawal{Amount: withdrawn.Add(amount)}
	if err := c.withdrawals.Put(db, withdrawalKey(p.AssetID, beneficiary), w); err != nil {
		return ledger.Amount{}, errors.Wrap(err, "cannot save withdrawal")
	}
	p.TotalDistributed = p.TotalDistributed.Add(amount)
	p.PendingDistribution = pending
	if err := c.pools.Put(db, []byte(p.AssetID), p); err != nil {
		return ledger.Amount{}, errors.Wrap(err, "cannot save pool")
	}
	_, err = c.history.Append(ctx, db, history.Record{
		Amount:      amount,
		Beneficiary: beneficiary,
		AssetID:     p.AssetID,
	})
	if err != nil {
		return ledger.Amount{}, errors.Wrap(err, "cannot record distribution")
	}
	return amount, nil
}

// transfer pays out from the escrow. It must be the last step of an
// operation.
func (c *Controller) transfer(db ledger.KVStore, to ledger.Address, amount ledger.Amount) error {
	if err := c.bank.MoveCoins(db, c.escrow, to, amount); err != nil {
		return errors.Wrapf(errors.ErrTransferFailed, "pay %s to %s: %s", amount, to, err)
	}
	return nil
}

// UpdateBeneficiaries changes shares of active beneficiaries. Active shares
// must sum to the whole after all changes are applied.
func (c *Controller) UpdateBeneficiaries(ctx context.Context, db ledger.KVStore, assetID string, changes ...shares.Change) error {
	p, err := c.Pool(db, assetID)
	if err != nil {
		return err
	}
	if err := p.Beneficiaries.Update(changes...); err != nil {
		return err
	}
	if err := c.pools.Put(db, []byte(assetID), p); err != nil {
		return errors.Wrap(err, "cannot save pool")
	}
	ledger.GetLogger(ctx).Info("royalty beneficiaries updated", "asset", assetID, "changes", len(changes))
	return nil
}

// RemoveBeneficiary deactivates a beneficiary. It cannot withdraw anymore,
// its withdrawn amount is kept.
func (c *Controller) RemoveBeneficiary(ctx context.Context, db ledger.KVStore, assetID string, beneficiary ledger.Address) error {
	p, err := c.Pool(db, assetID)
	if err != nil {
		return err
	}
	if err := p.Beneficiaries.Deactivate(beneficiary); err != nil {
		return err
	}
	if err := c.pools.Put(db, []byte(assetID), p); err != nil {
		return errors.Wrap(err, "cannot save pool")
	}
	ledger.GetLogger(ctx).Info("royalty beneficiary removed", "asset", assetID, "beneficiary", beneficiary.String())
	return nil
}

// PoolInfo returns the funds counters of the pool.
func (c *Controller) PoolInfo(db ledger.ReadOnlyKVStore, assetID string) (received, distributed, pending ledger.Amount, err error) {
	p, err := c.Pool(db, assetID)
	if err != nil {
		return
	}
	return p.TotalReceived, p.TotalDistributed, p.PendingDistribution, nil
}

// Beneficiaries returns all beneficiaries of the pool, including inactive
// ones, in the order they were added.
func (c *Controller) Beneficiaries(db ledger.ReadOnlyKVStore, assetID string) ([]shares.Share, error) {
	p, err := c.Pool(db, assetID)
	if err != nil {
		return nil, err
	}
	return p.Beneficiaries.Entries, nil
}

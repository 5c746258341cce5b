package revenue

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/store"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/token"
)

// Bank moves value between accounts. cash.Controller implements it.
type Bank interface {
	MoveCoins(db ledger.KVStore, src, dest ledger.Address, amount ledger.Amount) error
}

// EscrowAccount returns the address of the account holding undistributed
// revenue of given vault.
func EscrowAccount(vaultID string) ledger.Address {
	return ledger.NewCondition("revenue", "escrow", []byte(vaultID)).Address()
}

// Controller implements revenue operations.
type Controller struct {
	revenue orm.ModelBucket
	claimed orm.ModelBucket
	tokens  token.Reader
	bank    Bank
	guard   x.Guard
}

// NewController returns a controller reading balances from tokens and
// paying out through bank.
func NewController(tokens token.Reader, bank Bank) *Controller {
	return &Controller{
		revenue: NewRevenueBucket(),
		claimed: NewClaimedBucket(),
		tokens:  tokens,
		bank:    bank,
	}
}

// State returns revenue counters of the vault.
func (c *Controller) State(db ledger.ReadOnlyKVStore, vaultID string) (*Revenue, error) {
	var r Revenue
	switch err := c.revenue.One(db, []byte(vaultID), &r); {
	case err == nil:
		return &r, nil
	case errors.ErrNotFound.Is(err):
		if _, err := c.tokens.TotalSupply(db, vaultID); err != nil {
			return nil, err
		}
		return &Revenue{VaultID: vaultID}, nil
	default:
		return nil, err
	}
}

// AddRevenue records revenue of the vault. It does not move any value, use
// Deposit to move funds and record them at once.
func (c *Controller) AddRevenue(ctx context.Context, db ledger.KVStore, vaultID string, amount ledger.Amount) error {
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "must be greater than zero")
	}
	redeemed, err := c.tokens.IsRedeemed(db, vaultID)
	if err != nil {
		return err
	}
	if redeemed {
		return errors.Wrapf(errors.ErrRedeemed, "vault %q", vaultID)
	}
	r, err := c.State(db, vaultID)
	if err != nil {
		return err
	}
	r.TotalRevenue = r.TotalRevenue.Add(amount)
	if err := c.revenue.Put(db, []byte(vaultID), r); err != nil {
		return errors.Wrap(err, "cannot save revenue")
	}
	ledger.GetLogger(ctx).Info("revenue added", "vault", vaultID, "amount", amount.String())
	return nil
}

// Deposit moves funds of the payer to the vault escrow and records them as
// revenue.
func (c *Controller) Deposit(ctx context.Context, db ledger.KVStore, vaultID string, payer ledger.Address, amount ledger.Amount) error {
	return c.guard.Do(func() error {
		return store.Atomic(db, func(db ledger.KVStore) error {
			if err := c.AddRevenue(ctx, db, vaultID, amount); err != nil {
				return err
			}
			if err := c.bank.MoveCoins(db, payer, EscrowAccount(vaultID), amount); err != nil {
				return errors.Wrapf(errors.ErrTransferFailed, "deposit: %s", err)
			}
			return nil
		})
	})
}

// Claimable returns the revenue the holder can claim right now.
func (c *Controller) Claimable(db ledger.ReadOnlyKVStore, vaultID string, holder ledger.Address) (ledger.Amount, error) {
	r, err := c.State(db, vaultID)
	if err != nil {
		return ledger.Amount{}, err
	}
	return c.claimable(db, r, holder)
}

func (c *Controller) claimable(db ledger.ReadOnlyKVStore, r *Revenue, holder ledger.Address) (ledger.Amount, error) {
	if r.TotalRevenue.IsZero() {
		return ledger.Amount{}, nil
	}
	balance, err := c.tokens.BalanceOf(db, r.VaultID, holder)
	if err != nil {
		return ledger.Amount{}, err
	}
	if balance.IsZero() {
		return ledger.Amount{}, nil
	}
	supply, err := c.tokens.TotalSupply(db, r.VaultID)
	if err != nil {
		return ledger.Amount{}, err
	}
	entitled, err := r.TotalRevenue.MulDiv(balance, supply)
	if err != nil {
		return ledger.Amount{}, err
	}
	claimed, err := c.ClaimedAmount(db, r.VaultID, holder)
	if err != nil {
		return ledger.Amount{}, err
	}
	return entitled.SubFloor(claimed), nil
}

// ClaimedAmount returns the total revenue claimed by the holder.
func (c *Controller) ClaimedAmount(db ledger.ReadOnlyKVStore, vaultID string, holder ledger.Address) (ledger.Amount, error) {
	var cl Claimed
	switch err := c.claimed.One(db, claimedKey(vaultID, holder), &cl); {
	case err == nil:
		return cl.Amount, nil
	case errors.ErrNotFound.Is(err):
		return ledger.Amount{}, nil
	default:
		return ledger.Amount{}, err
	}
}

// Claim pays the holder everything it can claim.
func (c *Controller) Claim(ctx context.Context, db ledger.KVStore, vaultID string, holder ledger.Address) (ledger.Amount, error) {
	var paid ledger.Amount
	err := c.guard.Do(func() error {
		return store.Atomic(db, func(db ledger.KVStore) error {
			r, err := c.State(db, vaultID)
			if err != nil {
				return err
			}
			amount, err := c.claimable(db, r, holder)
			if err != nil {
				return err
			}
			if amount.IsZero() {
				return errors.Wrapf(errors.ErrNothingToClaim, "vault %q", vaultID)
			}
			if amount.Cmp(r.Undistributed()) > 0 {
				return errors.Wrapf(errors.ErrInsufficientAmount,
					"claim %s exceeds undistributed %s", amount, r.Undistributed())
			}

			claimed, err := c.ClaimedAmount(db, vaultID, holder)
			if err != nil {
				return err
			}
			if err := c.claimed.Put(db, claimedKey(vaultID, holder), &Claimed{Amount: claimed.Add(amount)}); err != nil {
				return errors.Wrap(err, "cannot save claim")
			}
			r.TotalDistributed = r.TotalDistributed.Add(amount)
			if err := c.revenue.Put(db, []byte(vaultID), r); err != nil {
				return errors.Wrap(err, "cannot save revenue")
			}

			if err := c.bank.MoveCoins(db, EscrowAccount(vaultID), holder, amount); err != nil {
				return errors.Wrapf(errors.ErrTransferFailed, "pay %s to %s: %s", amount, holder, err)
			}
			paid = amount
			return nil
		})
	})
	if err != nil {
		return ledger.Amount{}, err
	}
	ledger.GetLogger(ctx).Info("revenue claimed", "vault", vaultID, "holder", holder.String(), "amount", paid.String())
	return paid, nil
}

package cash

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// Controller is the functionality needed by cash.Handler and other
// extensions that move value.
type Controller interface {
	Balance(db ledger.ReadOnlyKVStore, addr ledger.Address) (ledger.Amount, error)
	MoveCoins(db ledger.KVStore, src ledger.Address, dest ledger.Address, amount ledger.Amount) error
	IssueCoins(db ledger.KVStore, dest ledger.Address, amount ledger.Amount) error
}

// BaseController is a simple implementation of the Controller interface.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller using given bucket.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the balance of given account. Unknown accounts have a
// zero balance.
func (c BaseController) Balance(db ledger.ReadOnlyKVStore, addr ledger.Address) (ledger.Amount, error) {
	w, err := c.wallet(db, addr)
	if err != nil {
		return ledger.Amount{}, err
	}
	return w.Balance, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db ledger.KVStore, src ledger.Address, dest ledger.Address, amount ledger.Amount) error {
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "src")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}

	sender, err := c.wallet(db, src)
	if err != nil {
		return err
	}
	balance, err := sender.Balance.Sub(amount)
	if err != nil {
		return errors.Wrapf(err, "account %s", src)
	}
	sender.Balance = balance
	if err := c.bucket.Put(db, src, sender); err != nil {
		return errors.Wrap(err, "cannot save sender")
	}

	// Load the recipient after the sender was saved, so that moving
	// coins to self is a no-op.
	recipient, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	recipient.Balance = recipient.Balance.Add(amount)
	if err := c.bucket.Put(db, dest, recipient); err != nil {
		return errors.Wrap(err, "cannot save recipient")
	}
	return nil
}

// IssueCoins attempts to add the given amount of coins to
// the destination address.
func (c BaseController) IssueCoins(db ledger.KVStore, dest ledger.Address, amount ledger.Amount) error {
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}
	w, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	w.Balance = w.Balance.Add(amount)
	return c.bucket.Put(db, dest, w)
}

func (c BaseController) wallet(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, errors.Wrap(err, "cannot load wallet")
	}
}

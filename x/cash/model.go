package cash

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet holds the balance of a single account.
type Wallet struct {
	Balance ledger.Amount `json:"balance"`
}

var _ orm.Model = (*Wallet)(nil)

// Validate requires the balance to be a valid amount.
func (w *Wallet) Validate() error {
	return w.Balance.Validate()
}

// NewBucket returns a bucket of wallets, keyed by account address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}

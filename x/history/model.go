package history

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// Record is a single payment made to a beneficiary.
type Record struct {
	// Timestamp is the block time of the payment, in unix seconds.
	Timestamp   int64          `json:"timestamp"`
	Height      int64          `json:"height"`
	Amount      ledger.Amount  `json:"amount"`
	Beneficiary ledger.Address `json:"beneficiary"`
	AssetID     string         `json:"asset_id"`
}

var _ orm.Model = (*Record)(nil)

func (r *Record) Validate() error {
	var errs error
	if !r.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	errs = errors.AppendField(errs, "Beneficiary", r.Beneficiary.Validate())
	if r.AssetID == "" {
		errs = errors.AppendField(errs, "AssetID", errors.ErrEmpty)
	}
	if r.Timestamp < 0 {
		errs = errors.AppendField(errs, "Timestamp", errors.ErrInput)
	}
	return errs
}

// index lists record numbers of a single beneficiary in append order. It
// only points into the log and is never authoritative.
type index struct {
	Records []uint64
}

var _ orm.Model = (*index)(nil)

func (i *index) Validate() error {
	for n := 1; n < len(i.Records); n++ {
		if i.Records[n] <= i.Records[n-1] {
			return errors.Wrap(errors.ErrModel, "records not in append order")
		}
	}
	return nil
}

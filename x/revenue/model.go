package revenue

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// Revenue tracks revenue of a single vault.
type Revenue struct {
	VaultID          string        `json:"vault_id"`
	TotalRevenue     ledger.Amount `json:"total_revenue"`
	TotalDistributed ledger.Amount `json:"total_distributed"`
}

var _ orm.Model = (*Revenue)(nil)

func (r *Revenue) Validate() error {
	var errs error
	if r.VaultID == "" {
		errs = errors.AppendField(errs, "VaultID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "TotalRevenue", r.TotalRevenue.Validate())
	errs = errors.AppendField(errs, "TotalDistributed", r.TotalDistributed.Validate())
	if r.TotalDistributed.Cmp(r.TotalRevenue) > 0 {
		errs = errors.AppendField(errs, "TotalDistributed",
			errors.Wrapf(errors.ErrState, "distributed %s of %s", r.TotalDistributed, r.TotalRevenue))
	}
	return errs
}

// Undistributed returns revenue that was not claimed yet.
func (r *Revenue) Undistributed() ledger.Amount {
	return r.TotalRevenue.SubFloor(r.TotalDistributed)
}

// Claimed is the total revenue claimed by a holder of a vault.
type Claimed struct {
	Amount ledger.Amount `json:"amount"`
}

var _ orm.Model = (*Claimed)(nil)

func (c *Claimed) Validate() error {
	return errors.Field("Amount", c.Amount.Validate(), "")
}

// NewRevenueBucket returns a bucket of revenue keyed by vault ID.
func NewRevenueBucket() orm.ModelBucket {
	return orm.NewModelBucket("revenue", &Revenue{})
}

// NewClaimedBucket returns a bucket of claims keyed by claimedKey.
func NewClaimedBucket() orm.ModelBucket {
	return orm.NewModelBucket("claimed", &Claimed{})
}

func claimedKey(vaultID string, holder ledger.Address) []byte {
	return orm.CompositeKey([]byte(vaultID), holder)
}

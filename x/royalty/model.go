package royalty

import (
	"regexp"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x/shares"
)

// IsAssetID returns true if given string is a valid asset identifier.
var IsAssetID = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{3,64}$`).MatchString

// Pool tracks funds received for a single asset.
type Pool struct {
	AssetID             string        `json:"asset_id"`
	Beneficiaries       shares.Table  `json:"beneficiaries"`
	TotalReceived       ledger.Amount `json:"total_received"`
	TotalDistributed    ledger.Amount `json:"total_distributed"`
	PendingDistribution ledger.Amount `json:"pending_distribution"`
	CreatedHeight       int64         `json:"created_height"`
}

var _ orm.Model = (*Pool)(nil)

// Validate checks the pool structure, including the conservation of funds.
func (p *Pool) Validate() error {
	var errs error
	if !IsAssetID(p.AssetID) {
		errs = errors.AppendField(errs, "AssetID", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Beneficiaries", p.Beneficiaries.Validate())
	errs = errors.AppendField(errs, "TotalReceived", p.TotalReceived.Validate())
	errs = errors.AppendField(errs, "TotalDistributed", p.TotalDistributed.Validate())
	errs = errors.AppendField(errs, "PendingDistribution", p.PendingDistribution.Validate())
	if !p.TotalReceived.Equals(p.TotalDistributed.Add(p.PendingDistribution)) {
		errs = errors.AppendField(errs, "PendingDistribution",
			errors.Wrapf(errors.ErrState, "received %s, distributed %s, pending %s",
				p.TotalReceived, p.TotalDistributed, p.PendingDistribution))
	}
	if p.CreatedHeight < 0 {
		errs = errors.AppendField(errs, "CreatedHeight", errors.ErrInput)
	}
	return errs
}

// Withdrawal is the total amount a beneficiary has withdrawn from a pool.
// It never decreases.
type Withdrawal struct {
	Amount ledger.Amount `json:"amount"`
}

var _ orm.Model = (*Withdrawal)(nil)

func (w *Withdrawal) Validate() error {
	return errors.Field("Amount", w.Amount.Validate(), "")
}

// NewPoolBucket returns a bucket of pools keyed by asset ID.
func NewPoolBucket() orm.ModelBucket {
	return orm.NewModelBucket("pool", &Pool{})
}

// NewWithdrawalBucket returns a bucket of withdrawals keyed by
// withdrawalKey.
func NewWithdrawalBucket() orm.ModelBucket {
	return orm.NewModelBucket("withdrawal", &Withdrawal{})
}

func withdrawalKey(assetID string, beneficiary ledger.Address) []byte {
	return orm.CompositeKey([]byte(assetID), beneficiary)
}

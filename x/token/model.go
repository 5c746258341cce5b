package token

import (
	"regexp"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// IsVaultID returns true if given string is a valid vault identifier.
var IsVaultID = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{3,64}$`).MatchString

// Vault is a fractionalized asset.
type Vault struct {
	Owner       ledger.Address `json:"owner"`
	TotalSupply ledger.Amount  `json:"total_supply"`
	Redeemed    bool           `json:"redeemed"`
	Name        string         `json:"name,omitempty"`
}

var _ orm.Model = (*Vault)(nil)

func (v *Vault) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", v.Owner.Validate())
	if !v.TotalSupply.IsPositive() {
		errs = errors.AppendField(errs, "TotalSupply", errors.ErrAmount)
	}
	if len(v.Name) > 128 {
		errs = errors.AppendField(errs, "Name", errors.ErrInput)
	}
	return errs
}

// Holding is the balance of a single holder of a vault.
type Holding struct {
	Balance ledger.Amount `json:"balance"`
}

var _ orm.Model = (*Holding)(nil)

func (h *Holding) Validate() error {
	return errors.Field("Balance", h.Balance.Validate(), "")
}

// NewVaultBucket returns a bucket of vaults keyed by vault ID.
func NewVaultBucket() orm.ModelBucket {
	return orm.NewModelBucket("vault", &Vault{})
}

// NewHoldingBucket returns a bucket of holdings keyed by holdingKey.
func NewHoldingBucket() orm.ModelBucket {
	return orm.NewModelBucket("holding", &Holding{})
}

func holdingKey(vaultID string, holder ledger.Address) []byte {
	return orm.CompositeKey([]byte(vaultID), holder)
}

package revenue

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/token"
)

var _ ledger.Msg = (*AddRevenueMsg)(nil)
var _ ledger.Msg = (*ClaimMsg)(nil)

// AddRevenueMsg moves funds of the signer into the vault revenue.
type AddRevenueMsg struct {
	VaultID string        `json:"vault_id"`
	Amount  ledger.Amount `json:"amount"`
}

func (AddRevenueMsg) Path() string {
	return "revenue/add"
}

func (m *AddRevenueMsg) Validate() error {
	var errs error
	if !token.IsVaultID(m.VaultID) {
		errs = errors.AppendField(errs, "VaultID", errors.ErrInput)
	}
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

// ClaimMsg pays the signer its claimable revenue.
type ClaimMsg struct {
	VaultID string `json:"vault_id"`
}

func (ClaimMsg) Path() string {
	return "revenue/claim"
}

func (m *ClaimMsg) Validate() error {
	if !token.IsVaultID(m.VaultID) {
		return errors.Field("VaultID", errors.ErrInput, "invalid vault id %q", m.VaultID)
	}
	return nil
}

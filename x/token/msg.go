package token

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

var _ ledger.Msg = (*CreateVaultMsg)(nil)
var _ ledger.Msg = (*TransferMsg)(nil)
var _ ledger.Msg = (*RedeemMsg)(nil)

// CreateVaultMsg splits an asset into a fixed supply of fractions, all
// minted to the owner.
type CreateVaultMsg struct {
	VaultID     string         `json:"vault_id"`
	Owner       ledger.Address `json:"owner"`
	TotalSupply ledger.Amount  `json:"total_supply"`
	Name        string         `json:"name,omitempty"`
}

func (CreateVaultMsg) Path() string {
	return "token/create_vault"
}

func (m *CreateVaultMsg) Validate() error {
	var errs error
	if !IsVaultID(m.VaultID) {
		errs = errors.AppendField(errs, "VaultID", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	if !m.TotalSupply.IsPositive() {
		errs = errors.AppendField(errs, "TotalSupply", errors.ErrAmount)
	}
	if len(m.Name) > 128 {
		errs = errors.AppendField(errs, "Name", errors.ErrInput)
	}
	return errs
}

// TransferMsg moves fractions from the signer to the destination.
type TransferMsg struct {
	VaultID     string         `json:"vault_id"`
	Destination ledger.Address `json:"destination"`
	Amount      ledger.Amount  `json:"amount"`
}

func (TransferMsg) Path() string {
	return "token/transfer"
}

func (m *TransferMsg) Validate() error {
	var errs error
	if !IsVaultID(m.VaultID) {
		errs = errors.AppendField(errs, "VaultID", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

// RedeemMsg marks a vault as redeemed. It must be signed by the vault
// owner.
type RedeemMsg struct {
	VaultID string `json:"vault_id"`
}

func (RedeemMsg) Path() string {
	return "token/redeem"
}

func (m *RedeemMsg) Validate() error {
	if !IsVaultID(m.VaultID) {
		return errors.Field("VaultID", errors.ErrInput, "invalid vault id %q", m.VaultID)
	}
	return nil
}

package royalty

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/shares"
)

var (
	_ ledger.Msg = (*CreatePoolMsg)(nil)
	_ ledger.Msg = (*ReceiveMsg)(nil)
	_ ledger.Msg = (*WithdrawMsg)(nil)
	_ ledger.Msg = (*BatchWithdrawMsg)(nil)
	_ ledger.Msg = (*UpdateBeneficiariesMsg)(nil)
	_ ledger.Msg = (*RemoveBeneficiaryMsg)(nil)
)

// CreatePoolMsg creates a royalty pool for an asset.
type CreatePoolMsg struct {
	AssetID       string          `json:"asset_id"`
	Beneficiaries []shares.Change `json:"beneficiaries"`
}

func (CreatePoolMsg) Path() string {
	return "royalty/create_pool"
}

// Validate checks the message structure. Share values are validated when
// the pool is created.
func (m *CreatePoolMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "AssetID", validateAssetID(m.AssetID))
	if len(m.Beneficiaries) == 0 {
		errs = errors.AppendField(errs, "Beneficiaries", errors.ErrInvalidShares)
	}
	if len(m.Beneficiaries) > shares.MaxEntries {
		errs = errors.AppendField(errs, "Beneficiaries", errors.ErrTooManyEntries)
	}
	return errs
}

// Split returns beneficiary addresses and their shares.
func (m *CreatePoolMsg) Split() ([]ledger.Address, []uint32) {
	addrs := make([]ledger.Address, len(m.Beneficiaries))
	bps := make([]uint32, len(m.Beneficiaries))
	for i, b := range m.Beneficiaries {
		addrs[i], bps[i] = b.Address, b.ShareBps
	}
	return addrs, bps
}

// ReceiveMsg pays funds of the signer into a pool.
type ReceiveMsg struct {
	AssetID string        `json:"asset_id"`
	Amount  ledger.Amount `json:"amount"`
}

func (ReceiveMsg) Path() string {
	return "royalty/receive"
}

func (m *ReceiveMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "AssetID", validateAssetID(m.AssetID))
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

// WithdrawMsg pays the signer everything it can withdraw from a pool.
type WithdrawMsg struct {
	AssetID string `json:"asset_id"`
}

func (WithdrawMsg) Path() string {
	return "royalty/withdraw"
}

func (m *WithdrawMsg) Validate() error {
	return errors.Field("AssetID", validateAssetID(m.AssetID), "")
}

// BatchWithdrawMsg withdraws from many pools at once.
type BatchWithdrawMsg struct {
	AssetIDs []string `json:"asset_ids"`
}

func (BatchWithdrawMsg) Path() string {
	return "royalty/batch_withdraw"
}

func (m *BatchWithdrawMsg) Validate() error {
	var errs error
	if len(m.AssetIDs) == 0 {
		errs = errors.AppendField(errs, "AssetIDs", errors.ErrEmpty)
	}
	if len(m.AssetIDs) > MaxBatch {
		errs = errors.AppendField(errs, "AssetIDs", errors.ErrTooManyEntries)
	}
	for _, id := range m.AssetIDs {
		errs = errors.AppendField(errs, "AssetIDs", validateAssetID(id))
	}
	return errs
}

// UpdateBeneficiariesMsg changes shares of active beneficiaries.
type UpdateBeneficiariesMsg struct {
	AssetID string          `json:"asset_id"`
	Changes []shares.Change `json:"changes"`
}

func (UpdateBeneficiariesMsg) Path() string {
	return "royalty/update_beneficiaries"
}

func (m *UpdateBeneficiariesMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "AssetID", validateAssetID(m.AssetID))
	if len(m.Changes) == 0 {
		errs = errors.AppendField(errs, "Changes", errors.ErrEmpty)
	}
	for _, c := range m.Changes {
		errs = errors.AppendField(errs, "Changes", c.Address.Validate())
	}
	return errs
}

// RemoveBeneficiaryMsg deactivates a beneficiary.
type RemoveBeneficiaryMsg struct {
	AssetID     string         `json:"asset_id"`
	Beneficiary ledger.Address `json:"beneficiary"`
}

func (RemoveBeneficiaryMsg) Path() string {
	return "royalty/remove_beneficiary"
}

func (m *RemoveBeneficiaryMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "AssetID", validateAssetID(m.AssetID))
	errs = errors.AppendField(errs, "Beneficiary", m.Beneficiary.Validate())
	return errs
}

func validateAssetID(id string) error {
	if !IsAssetID(id) {
		return errors.Wrapf(errors.ErrInput, "asset id %q", id)
	}
	return nil
}

package gov

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/token"
)

var (
	_ ledger.Msg = (*CreateProposalMsg)(nil)
	_ ledger.Msg = (*VoteMsg)(nil)
	_ ledger.Msg = (*ExecuteMsg)(nil)
	_ ledger.Msg = (*CancelMsg)(nil)
	_ ledger.Msg = (*UpdateConfigurationMsg)(nil)
)

// CreateProposalMsg opens a proposal. The signer is the proposer.
type CreateProposalMsg struct {
	VaultID      string `json:"vault_id"`
	Description  string `json:"description"`
	VotingPeriod int64  `json:"voting_period"`
}

func (CreateProposalMsg) Path() string {
	return "gov/create_proposal"
}

func (m *CreateProposalMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "VaultID", validateVaultID(m.VaultID))
	errs = errors.AppendField(errs, "Description", validateDescription(m.Description))
	if m.VotingPeriod < MinVotingPeriod {
		errs = errors.AppendField(errs, "VotingPeriod", errors.ErrInput)
	}
	return errs
}

// VoteMsg casts the vote of the signer.
type VoteMsg struct {
	VaultID    string `json:"vault_id"`
	ProposalID uint64 `json:"proposal_id"`
	Support    bool   `json:"support"`
}

func (VoteMsg) Path() string {
	return "gov/vote"
}

func (m *VoteMsg) Validate() error {
	return validateRef(m.VaultID, m.ProposalID)
}

// ExecuteMsg executes a passed proposal. Anyone can execute it.
type ExecuteMsg struct {
	VaultID    string `json:"vault_id"`
	ProposalID uint64 `json:"proposal_id"`
}

func (ExecuteMsg) Path() string {
	return "gov/execute"
}

func (m *ExecuteMsg) Validate() error {
	return validateRef(m.VaultID, m.ProposalID)
}

// CancelMsg cancels a proposal of the signer.
type CancelMsg struct {
	VaultID    string `json:"vault_id"`
	ProposalID uint64 `json:"proposal_id"`
}

func (CancelMsg) Path() string {
	return "gov/cancel"
}

func (m *CancelMsg) Validate() error {
	return validateRef(m.VaultID, m.ProposalID)
}

// UpdateConfigurationMsg replaces governance parameters.
type UpdateConfigurationMsg struct {
	Patch Configuration `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string {
	return "gov/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	return errors.Wrap(m.Patch.Validate(), "patch")
}

func validateRef(vaultID string, proposalID uint64) error {
	var errs error
	errs = errors.AppendField(errs, "VaultID", validateVaultID(vaultID))
	if proposalID == 0 {
		errs = errors.AppendField(errs, "ProposalID", errors.ErrInvalidProposal)
	}
	return errs
}

func validateVaultID(id string) error {
	if !token.IsVaultID(id) {
		return errors.Wrapf(errors.ErrInput, "vault id %q", id)
	}
	return nil
}

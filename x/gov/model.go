package gov

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x/token"
)

const (
	// MinVotingPeriod is the shortest allowed voting period, in blocks.
	MinVotingPeriod = 7200

	// MaxDescriptionLength is the longest allowed proposal description, in
	// bytes.
	MaxDescriptionLength = 5000

	// Whole is the quorum denominator. A quorum of Whole basis points
	// requires the whole supply to vote.
	Whole = 10000
)

// Proposal is a single governance proposal of a vault. IDs are assigned per
// vault, starting at 1.
type Proposal struct {
	ID           uint64         `json:"id"`
	VaultID      string         `json:"vault_id"`
	Description  string         `json:"description"`
	Proposer     ledger.Address `json:"proposer"`
	ForVotes     ledger.Amount  `json:"for_votes"`
	AgainstVotes ledger.Amount  `json:"against_votes"`
	StartBlock   int64          `json:"start_block"`
	EndBlock     int64          `json:"end_block"`
	Executed     bool           `json:"executed"`
	Canceled     bool           `json:"canceled"`
}

var _ orm.Model = (*Proposal)(nil)

func (p *Proposal) Validate() error {
	var errs error
	if p.ID == 0 {
		errs = errors.AppendField(errs, "ID", errors.ErrEmpty)
	}
	if !token.IsVaultID(p.VaultID) {
		errs = errors.AppendField(errs, "VaultID", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Description", validateDescription(p.Description))
	errs = errors.AppendField(errs, "Proposer", p.Proposer.Validate())
	errs = errors.AppendField(errs, "ForVotes", p.ForVotes.Validate())
	errs = errors.AppendField(errs, "AgainstVotes", p.AgainstVotes.Validate())
	if p.StartBlock < 0 {
		errs = errors.AppendField(errs, "StartBlock", errors.ErrInput)
	}
	if p.EndBlock < p.StartBlock || p.EndBlock-p.StartBlock < MinVotingPeriod {
		errs = errors.AppendField(errs, "EndBlock", errors.ErrInput)
	}
	if p.Executed && p.Canceled {
		errs = errors.AppendField(errs, "Canceled", errors.ErrState)
	}
	return errs
}

// Votes returns the total weight cast on the proposal.
func (p *Proposal) Votes() ledger.Amount {
	return p.ForVotes.Add(p.AgainstVotes)
}

func validateDescription(d string) error {
	switch n := len(d); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "description")
	case n > MaxDescriptionLength:
		return errors.Wrapf(errors.ErrInput, "description longer than %d bytes", MaxDescriptionLength)
	}
	return nil
}

// Vote is the ballot of a single voter. Weight is the balance of the voter
// at the time of voting.
type Vote struct {
	Support bool          `json:"support"`
	Weight  ledger.Amount `json:"weight"`
}

var _ orm.Model = (*Vote)(nil)

func (v *Vote) Validate() error {
	if !v.Weight.IsPositive() {
		return errors.Field("Weight", errors.ErrAmount, "must be greater than zero")
	}
	return nil
}

// State is the lifecycle stage of a proposal.
type State uint8

const (
	Pending State = iota
	Active
	Defeated
	Succeeded
	Executed
	Canceled
)

var stateNames = []string{
	Pending:   "pending",
	Active:    "active",
	Defeated:  "defeated",
	Succeeded: "succeeded",
	Executed:  "executed",
	Canceled:  "canceled",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText makes states readable in query results.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// NewProposalBucket returns a bucket of proposals keyed by proposalKey.
func NewProposalBucket() orm.ModelBucket {
	return orm.NewModelBucket("proposal", &Proposal{})
}

// NewVoteBucket returns a bucket of votes keyed by voteKey.
func NewVoteBucket() orm.ModelBucket {
	return orm.NewModelBucket("vote", &Vote{})
}

func proposalKey(vaultID string, id uint64) []byte {
	return orm.CompositeKey([]byte(vaultID), orm.EncodeSequence(int64(id)))
}

func voteKey(vaultID string, id uint64, voter ledger.Address) []byte {
	return orm.CompositeKey([]byte(vaultID), orm.EncodeSequence(int64(id)), voter)
}

// proposalSequence returns the id counter of the vault.
func proposalSequence(vaultID string) orm.Sequence {
	return orm.NewSequence("proposal", vaultID)
}

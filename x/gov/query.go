package gov

import (
	"encoding/json"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/token"
)

// ProposalQuery selects a proposal of a vault.
type ProposalQuery struct {
	VaultID    string `json:"vault_id"`
	ProposalID uint64 `json:"proposal_id"`
}

// VoteQuery selects the vote of a single voter.
type VoteQuery struct {
	VaultID    string         `json:"vault_id"`
	ProposalID uint64         `json:"proposal_id"`
	Voter      ledger.Address `json:"voter"`
}

// QuorumResponse is returned by the "/gov/quorum" query.
type QuorumResponse struct {
	Required  ledger.Amount `json:"required"`
	Votes     ledger.Amount `json:"votes"`
	HasQuorum bool          `json:"has_quorum"`
}

// RegisterQuery registers "/gov/proposals" returning a proposal,
// "/gov/quorum" returning the quorum of a proposal, "/gov/passed"
// returning whether a proposal passed and "/gov/votes" returning the
// recorded vote of a voter.
func RegisterQuery(qr ledger.QueryRouter, tokens token.Reader) {
	ctrl := NewController(tokens)
	qr.Register("/gov/proposals", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		q, err := decode(data)
		if err != nil {
			return nil, err
		}
		return ctrl.Proposal(db, q.VaultID, q.ProposalID)
	}))
	qr.Register("/gov/quorum", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		q, err := decode(data)
		if err != nil {
			return nil, err
		}
		p, err := ctrl.Proposal(db, q.VaultID, q.ProposalID)
		if err != nil {
			return nil, err
		}
		required, err := ctrl.Quorum(db, q.VaultID)
		if err != nil {
			return nil, err
		}
		ok, err := ctrl.HasQuorum(db, q.VaultID, q.ProposalID)
		if err != nil {
			return nil, err
		}
		return &QuorumResponse{
			Required:  required,
			Votes:     p.Votes(),
			HasQuorum: ok,
		}, nil
	}))
	qr.Register("/gov/passed", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		q, err := decode(data)
		if err != nil {
			return nil, err
		}
		return ctrl.ProposalPassed(db, q.VaultID, q.ProposalID)
	}))
	qr.Register("/gov/votes", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		var q VoteQuery
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "query data: %s", err)
		}
		if err := validateRef(q.VaultID, q.ProposalID); err != nil {
			return nil, err
		}
		if err := q.Voter.Validate(); err != nil {
			return nil, errors.Wrap(err, "voter")
		}
		return ctrl.VoteOf(db, q.VaultID, q.ProposalID, q.Voter)
	}))
}

func decode(data []byte) (*ProposalQuery, error) {
	var q ProposalQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "query data: %s", err)
	}
	if err := validateVaultID(q.VaultID); err != nil {
		return nil, err
	}
	return &q, nil
}

package gov

import (
	"context"
	"math"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x/token"
)

// Controller implements the proposal lifecycle. Voting power is the
// fraction balance read from tokens.
type Controller struct {
	proposals orm.ModelBucket
	votes     orm.ModelBucket
	tokens    token.Reader
}

// NewController returns a controller reading voting power from tokens.
func NewController(tokens token.Reader) *Controller {
	return &Controller{
		proposals: NewProposalBucket(),
		votes:     NewVoteBucket(),
		tokens:    tokens,
	}
}

// CreateProposal opens a proposal of the vault. The voting period starts at
// the current block and lasts period blocks. Only holders of vault fractions
// can create proposals.
func (c *Controller) CreateProposal(
	ctx context.Context,
	db ledger.KVStore,
	vaultID string,
	proposer ledger.Address,
	description string,
	period int64,
) (*Proposal, error) {
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if period < MinVotingPeriod {
		return nil, errors.Wrapf(errors.ErrInput, "voting period must be at least %d blocks", MinVotingPeriod)
	}
	if _, err := c.tokens.TotalSupply(db, vaultID); err != nil {
		return nil, err
	}
	balance, err := c.tokens.BalanceOf(db, vaultID, proposer)
	if err != nil {
		return nil, err
	}
	if !balance.IsPositive() {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s holds no fractions of %q", proposer, vaultID)
	}
	now, err := height(ctx)
	if err != nil {
		return nil, err
	}
	if period > math.MaxInt64-now {
		return nil, errors.Wrapf(errors.ErrInput, "voting period of %d blocks ends beyond the last block", period)
	}

	seq := proposalSequence(vaultID)
	id, err := seq.NextInt(db)
	if err != nil {
		return nil, errors.Wrap(err, "proposal id")
	}
	p := &Proposal{
		ID:          uint64(id),
		VaultID:     vaultID,
		Description: description,
		Proposer:    proposer,
		StartBlock:  now,
		EndBlock:    now + period,
	}
	if err := c.proposals.Put(db, proposalKey(vaultID, p.ID), p); err != nil {
		return nil, errors.Wrap(err, "cannot save proposal")
	}
	ledger.GetLogger(ctx).Info("proposal created",
		"vault", vaultID, "id", p.ID, "proposer", proposer.String(), "end", p.EndBlock)
	return p, nil
}

// Proposal returns the proposal with given id or ErrInvalidProposal if it
// was never created.
func (c *Controller) Proposal(db ledger.ReadOnlyKVStore, vaultID string, id uint64) (*Proposal, error) {
	if id == 0 {
		return nil, errors.Wrap(errors.ErrInvalidProposal, "ids start at 1")
	}
	var p Proposal
	switch err := c.proposals.One(db, proposalKey(vaultID, id), &p); {
	case err == nil:
		return &p, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(errors.ErrInvalidProposal, "proposal %d of %q", id, vaultID)
	default:
		return nil, err
	}
}

// CastVote records the vote of the voter weighted by its current balance.
func (c *Controller) CastVote(ctx context.Context, db ledger.KVStore, vaultID string, id uint64, voter ledger.Address, support bool) (*Vote, error) {
	p, err := c.Proposal(db, vaultID, id)
	if err != nil {
		return nil, err
	}
	now, err := height(ctx)
	if err != nil {
		return nil, err
	}
	if now < p.StartBlock {
		return nil, errors.Wrapf(errors.ErrNotStarted, "voting starts at %d", p.StartBlock)
	}
	if now > p.EndBlock {
		return nil, errors.Wrapf(errors.ErrVotingEnded, "voting ended at %d", p.EndBlock)
	}
	if p.Canceled {
		return nil, errors.Wrap(errors.ErrState, "proposal canceled")
	}
	voted, err := c.HasVoted(db, vaultID, id, voter)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, errors.Wrapf(errors.ErrAlreadyVoted, "%s on proposal %d", voter, id)
	}
	weight, err := c.tokens.BalanceOf(db, vaultID, voter)
	if err != nil {
		return nil, err
	}
	if weight.IsZero() {
		return nil, errors.Wrapf(errors.ErrNoVotingPower, "%s holds no fractions of %q", voter, vaultID)
	}

	vote := &Vote{Support: support, Weight: weight}
	if err := c.votes.Put(db, voteKey(vaultID, id, voter), vote); err != nil {
		return nil, errors.Wrap(err, "cannot save vote")
	}
	if support {
		p.ForVotes = p.ForVotes.Add(weight)
	} else {
		p.AgainstVotes = p.AgainstVotes.Add(weight)
	}
	if err := c.proposals.Put(db, proposalKey(vaultID, id), p); err != nil {
		return nil, errors.Wrap(err, "cannot save proposal")
	}
	ledger.GetLogger(ctx).Info("vote cast",
		"vault", vaultID, "id", id, "voter", voter.String(), "support", support, "weight", weight.String())
	return vote, nil
}

// HasVoted returns true if the voter has voted on the proposal.
func (c *Controller) HasVoted(db ledger.ReadOnlyKVStore, vaultID string, id uint64, voter ledger.Address) (bool, error) {
	switch err := c.votes.Has(db, voteKey(vaultID, id, voter)); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// VoteOf returns the vote cast by the voter.
func (c *Controller) VoteOf(db ledger.ReadOnlyKVStore, vaultID string, id uint64, voter ledger.Address) (*Vote, error) {
	var v Vote
	if err := c.votes.One(db, voteKey(vaultID, id, voter), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Quorum returns the weight that must be cast on a proposal of the vault
// for its outcome to be valid.
func (c *Controller) Quorum(db ledger.ReadOnlyKVStore, vaultID string) (ledger.Amount, error) {
	conf, err := loadConf(db)
	if err != nil {
		return ledger.Amount{}, err
	}
	supply, err := c.tokens.TotalSupply(db, vaultID)
	if err != nil {
		return ledger.Amount{}, err
	}
	return supply.MulDiv(ledger.NewAmount(uint64(conf.QuorumBps)), ledger.NewAmount(Whole))
}

// HasQuorum returns true if enough weight was cast on the proposal.
func (c *Controller) HasQuorum(db ledger.ReadOnlyKVStore, vaultID string, id uint64) (bool, error) {
	p, err := c.Proposal(db, vaultID, id)
	if err != nil {
		return false, err
	}
	return c.hasQuorum(db, p)
}

func (c *Controller) hasQuorum(db ledger.ReadOnlyKVStore, p *Proposal) (bool, error) {
	quorum, err := c.Quorum(db, p.VaultID)
	if err != nil {
		return false, err
	}
	return p.Votes().Cmp(quorum) >= 0, nil
}

// ProposalPassed returns true if the proposal has quorum and strictly more
// weight voted for it than against it.
func (c *Controller) ProposalPassed(db ledger.ReadOnlyKVStore, vaultID string, id uint64) (bool, error) {
	p, err := c.Proposal(db, vaultID, id)
	if err != nil {
		return false, err
	}
	return c.passed(db, p)
}

func (c *Controller) passed(db ledger.ReadOnlyKVStore, p *Proposal) (bool, error) {
	ok, err := c.hasQuorum(db, p)
	if err != nil || !ok {
		return false, err
	}
	return p.ForVotes.Cmp(p.AgainstVotes) > 0, nil
}

// Execute marks a passed proposal as executed. It can be called only after
// the voting period is over.
func (c *Controller) Execute(ctx context.Context, db ledger.KVStore, vaultID string, id uint64) (*Proposal, error) {
	p, err := c.Proposal(db, vaultID, id)
	if err != nil {
		return nil, err
	}
	now, err := height(ctx)
	if err != nil {
		return nil, err
	}
	if now <= p.EndBlock {
		return nil, errors.Wrapf(errors.ErrVotingOpen, "voting ends at %d", p.EndBlock)
	}
	if p.Executed {
		return nil, errors.Wrapf(errors.ErrAlreadyExecuted, "proposal %d", id)
	}
	if p.Canceled {
		return nil, errors.Wrap(errors.ErrState, "proposal canceled")
	}
	ok, err := c.passed(db, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotPassed, "for %s, against %s", p.ForVotes, p.AgainstVotes)
	}
	p.Executed = true
	if err := c.proposals.Put(db, proposalKey(vaultID, id), p); err != nil {
		return nil, errors.Wrap(err, "cannot save proposal")
	}
	ledger.GetLogger(ctx).Info("proposal executed", "vault", vaultID, "id", id)
	return p, nil
}

// Cancel withdraws a pending or active proposal. Only the proposer can
// cancel it.
func (c *Controller) Cancel(ctx context.Context, db ledger.KVStore, vaultID string, id uint64, caller ledger.Address) (*Proposal, error) {
	p, err := c.Proposal(db, vaultID, id)
	if err != nil {
		return nil, err
	}
	if !p.Proposer.Equals(caller) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the proposer can cancel")
	}
	state, err := c.state(ctx, db, p)
	if err != nil {
		return nil, err
	}
	if state != Pending && state != Active {
		return nil, errors.Wrapf(errors.ErrState, "cannot cancel %s proposal", state)
	}
	p.Canceled = true
	if err := c.proposals.Put(db, proposalKey(vaultID, id), p); err != nil {
		return nil, errors.Wrap(err, "cannot save proposal")
	}
	ledger.GetLogger(ctx).Info("proposal canceled", "vault", vaultID, "id", id)
	return p, nil
}

// State returns the lifecycle stage of the proposal at the current block.
func (c *Controller) State(ctx context.Context, db ledger.ReadOnlyKVStore, vaultID string, id uint64) (State, error) {
	p, err := c.Proposal(db, vaultID, id)
	if err != nil {
		return 0, err
	}
	return c.state(ctx, db, p)
}

func (c *Controller) state(ctx context.Context, db ledger.ReadOnlyKVStore, p *Proposal) (State, error) {
	switch {
	case p.Canceled:
		return Canceled, nil
	case p.Executed:
		return Executed, nil
	}
	now, err := height(ctx)
	if err != nil {
		return 0, err
	}
	switch {
	case now < p.StartBlock:
		return Pending, nil
	case now <= p.EndBlock:
		return Active, nil
	}
	ok, err := c.passed(db, p)
	if err != nil {
		return 0, err
	}
	if ok {
		return Succeeded, nil
	}
	return Defeated, nil
}

// UpdateConfiguration replaces governance parameters.
func (c *Controller) UpdateConfiguration(ctx context.Context, db ledger.KVStore, conf Configuration) error {
	if err := gconf.Save(db, confKey, &conf); err != nil {
		return err
	}
	ledger.GetLogger(ctx).Info("configuration updated", "quorum_bps", conf.QuorumBps)
	return nil
}

func height(ctx context.Context) (int64, error) {
	h, ok := ledger.GetHeight(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrHuman, "block height not set")
	}
	return h, nil
}

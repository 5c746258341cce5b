package gov

import (
	"context"
	"strconv"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x"
)

const (
	tagVault      = "gov.vault"
	tagProposalID = "gov.proposal"
	tagAction     = "gov.action"
)

// RegisterRoutes registers handlers for governance message processing.
func RegisterRoutes(r ledger.Registry, auth x.Authenticator, roles x.RoleChecker, ctrl *Controller) {
	r.Handle(CreateProposalMsg{}.Path(), &CreateProposalHandler{auth: auth, ctrl: ctrl})
	r.Handle(VoteMsg{}.Path(), &VoteHandler{auth: auth, ctrl: ctrl})
	r.Handle(ExecuteMsg{}.Path(), &ExecuteHandler{ctrl: ctrl})
	r.Handle(CancelMsg{}.Path(), &CancelHandler{auth: auth, ctrl: ctrl})
	r.Handle(UpdateConfigurationMsg{}.Path(), &UpdateConfigurationHandler{auth: auth, roles: roles, ctrl: ctrl})
}

func proposalTags(vaultID string, id uint64, action string) []ledger.Tag {
	return []ledger.Tag{
		{Key: tagVault, Value: vaultID},
		{Key: tagProposalID, Value: strconv.FormatUint(id, 10)},
		{Key: tagAction, Value: action},
	}
}

type CreateProposalHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ledger.Handler = (*CreateProposalHandler)(nil)

func (h *CreateProposalHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *CreateProposalHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, proposer, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	p, err := h.ctrl.CreateProposal(ctx, db, msg.VaultID, proposer, msg.Description, msg.VotingPeriod)
	if err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{
		Data: []byte(strconv.FormatUint(p.ID, 10)),
		Tags: append(proposalTags(p.VaultID, p.ID, "create"), ledger.Tag{Key: "gov.proposer", Value: proposer.String()}),
	}, nil
}

func (h *CreateProposalHandler) validate(ctx context.Context, tx ledger.Tx) (*CreateProposalMsg, ledger.Address, error) {
	var msg CreateProposalMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	proposer, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, proposer, nil
}

type VoteHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ledger.Handler = (*VoteHandler)(nil)

func (h *VoteHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *VoteHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, voter, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	vote, err := h.ctrl.CastVote(ctx, db, msg.VaultID, msg.ProposalID, voter, msg.Support)
	if err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{
		Data: []byte(vote.Weight.String()),
		Tags: proposalTags(msg.VaultID, msg.ProposalID, "vote"),
	}, nil
}

func (h *VoteHandler) validate(ctx context.Context, tx ledger.Tx) (*VoteMsg, ledger.Address, error) {
	var msg VoteMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	voter, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, voter, nil
}

// ExecuteHandler executes passed proposals. It requires no signature.
type ExecuteHandler struct {
	ctrl *Controller
}

var _ ledger.Handler = (*ExecuteHandler)(nil)

func (h *ExecuteHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	var msg ExecuteMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	state, err := h.ctrl.State(ctx, db, msg.VaultID, msg.ProposalID)
	if err != nil {
		return nil, err
	}
	return &ledger.CheckResult{Log: state.String()}, nil
}

func (h *ExecuteHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	var msg ExecuteMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.ctrl.Execute(ctx, db, msg.VaultID, msg.ProposalID); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{Tags: proposalTags(msg.VaultID, msg.ProposalID, "execute")}, nil
}

type CancelHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ledger.Handler = (*CancelHandler)(nil)

func (h *CancelHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *CancelHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.Cancel(ctx, db, msg.VaultID, msg.ProposalID, caller); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{Tags: proposalTags(msg.VaultID, msg.ProposalID, "cancel")}, nil
}

func (h *CancelHandler) validate(ctx context.Context, tx ledger.Tx) (*CancelMsg, ledger.Address, error) {
	var msg CancelMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, caller, nil
}

// UpdateConfigurationHandler replaces governance parameters. It requires
// the admin role.
type UpdateConfigurationHandler struct {
	auth  x.Authenticator
	roles x.RoleChecker
	ctrl  *Controller
}

var _ ledger.Handler = (*UpdateConfigurationHandler)(nil)

func (h *UpdateConfigurationHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *UpdateConfigurationHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.UpdateConfiguration(ctx, db, msg.Patch); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

func (h *UpdateConfigurationHandler) validate(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*UpdateConfigurationMsg, error) {
	var msg UpdateConfigurationMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := x.RequireRole(ctx, db, h.auth, h.roles, x.RoleAdmin); err != nil {
		return nil, err
	}
	return &msg, nil
}

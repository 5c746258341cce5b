package royalty

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x"
)

// RegisterRoutes registers handlers for all royalty messages. Pool
// management requires the pool manager role, withdrawals pay the signer.
func RegisterRoutes(r ledger.Registry, auth x.Authenticator, roles x.RoleChecker, ctrl *Controller) {
	r.Handle(CreatePoolMsg{}.Path(), &CreatePoolHandler{auth: auth, roles: roles, ctrl: ctrl})
	r.Handle(ReceiveMsg{}.Path(), &ReceiveHandler{auth: auth, ctrl: ctrl})
	r.Handle(WithdrawMsg{}.Path(), &WithdrawHandler{auth: auth, ctrl: ctrl})
	r.Handle(BatchWithdrawMsg{}.Path(), &BatchWithdrawHandler{auth: auth, ctrl: ctrl})
	r.Handle(UpdateBeneficiariesMsg{}.Path(), &UpdateBeneficiariesHandler{auth: auth, roles: roles, ctrl: ctrl})
	r.Handle(RemoveBeneficiaryMsg{}.Path(), &RemoveBeneficiaryHandler{auth: auth, roles: roles, ctrl: ctrl})
}

// CreatePoolHandler creates royalty pools.
type CreatePoolHandler struct {
	auth  x.Authenticator
	roles x.RoleChecker
	ctrl  *Controller
}

var _ ledger.Handler = (*CreatePoolHandler)(nil)

func (h *CreatePoolHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *CreatePoolHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	addrs, bps := msg.Split()
	if _, err := h.ctrl.CreatePool(ctx, db, msg.AssetID, addrs, bps); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{
		Data: []byte(msg.AssetID),
		Tags: []ledger.Tag{{Key: "royalty.pool", Value: msg.AssetID}},
	}, nil
}

func (h *CreatePoolHandler) validate(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*CreatePoolMsg, error) {
	var msg CreatePoolMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := x.RequireRole(ctx, db, h.auth, h.roles, x.RolePoolManager); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReceiveHandler moves funds of the signer into a pool.
type ReceiveHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ledger.Handler = (*ReceiveHandler)(nil)

func (h *ReceiveHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *ReceiveHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, payer, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Pay(ctx, db, msg.AssetID, payer, msg.Amount); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{
		Tags: []ledger.Tag{{Key: "royalty.pool", Value: msg.AssetID}},
	}, nil
}

func (h *ReceiveHandler) validate(ctx context.Context, tx ledger.Tx) (*ReceiveMsg, ledger.Address, error) {
	var msg ReceiveMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	payer, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, payer, nil
}

// WithdrawHandler pays the signer its withdrawable amount.
type WithdrawHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ledger.Handler = (*WithdrawHandler)(nil)

func (h *WithdrawHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	amount, err := h.ctrl.Withdrawable(db, msg.AssetID, caller)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, errors.Wrapf(errors.ErrNothingToWithdraw, "asset %q", msg.AssetID)
	}
	return &ledger.CheckResult{Log: amount.String()}, nil
}

func (h *WithdrawHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	paid, err := h.ctrl.Withdraw(ctx, db, msg.AssetID, caller)
	if err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{
		Data: []byte(paid.String()),
		Tags: []ledger.Tag{
			{Key: "royalty.pool", Value: msg.AssetID},
			{Key: "royalty.beneficiary", Value: caller.String()},
		},
	}, nil
}

func (h *WithdrawHandler) validate(ctx context.Context, tx ledger.Tx) (*WithdrawMsg, ledger.Address, error) {
	var msg WithdrawMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, caller, nil
}

// BatchWithdrawHandler pays the signer its withdrawable amount from many
// pools.
type BatchWithdrawHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ledger.Handler = (*BatchWithdrawHandler)(nil)

func (h *BatchWithdrawHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *BatchWithdrawHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	paid, err := h.ctrl.BatchWithdraw(ctx, db, msg.AssetIDs, caller)
	if err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{
		Data: []byte(paid.String()),
		Tags: []ledger.Tag{{Key: "royalty.beneficiary", Value: caller.String()}},
	}, nil
}

func (h *BatchWithdrawHandler) validate(ctx context.Context, tx ledger.Tx) (*BatchWithdrawMsg, ledger.Address, error) {
	var msg BatchWithdrawMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, caller, nil
}

// UpdateBeneficiariesHandler changes beneficiary shares.
type UpdateBeneficiariesHandler struct {
	auth  x.Authenticator
	roles x.RoleChecker
	ctrl  *Controller
}

var _ ledger.Handler = (*UpdateBeneficiariesHandler)(nil)

func (h *UpdateBeneficiariesHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *UpdateBeneficiariesHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.UpdateBeneficiaries(ctx, db, msg.AssetID, msg.Changes...); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

func (h *UpdateBeneficiariesHandler) validate(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*UpdateBeneficiariesMsg, error) {
	var msg UpdateBeneficiariesMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := x.RequireRole(ctx, db, h.auth, h.roles, x.RolePoolManager); err != nil {
		return nil, err
	}
	return &msg, nil
}

// RemoveBeneficiaryHandler deactivates beneficiaries.
type RemoveBeneficiaryHandler struct {
	auth  x.Authenticator
	roles x.RoleChecker
	ctrl  *Controller
}

var _ ledger.Handler = (*RemoveBeneficiaryHandler)(nil)

func (h *RemoveBeneficiaryHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *RemoveBeneficiaryHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.RemoveBeneficiary(ctx, db, msg.AssetID, msg.Beneficiary); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

func (h *RemoveBeneficiaryHandler) validate(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*RemoveBeneficiaryMsg, error) {
	var msg RemoveBeneficiaryMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := x.RequireRole(ctx, db, h.auth, h.roles, x.RolePoolManager); err != nil {
		return nil, err
	}
	return &msg, nil
}

package token

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x"
)

// RegisterRoutes registers handlers for all token messages.
func RegisterRoutes(r ledger.Registry, auth x.Authenticator, roles x.RoleChecker, ctrl *Controller) {
	r.Handle(CreateVaultMsg{}.Path(), &CreateVaultHandler{auth: auth, roles: roles, ctrl: ctrl})
	r.Handle(TransferMsg{}.Path(), &TransferHandler{auth: auth, ctrl: ctrl})
	r.Handle(RedeemMsg{}.Path(), &RedeemHandler{auth: auth, ctrl: ctrl})
}

// CreateVaultHandler creates vaults. The signer must have the vault
// manager role.
type CreateVaultHandler struct {
	auth  x.Authenticator
	roles x.RoleChecker
	ctrl  *Controller
}

var _ ledger.Handler = (*CreateVaultHandler)(nil)

func (h *CreateVaultHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *CreateVaultHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.CreateVault(db, msg.VaultID, msg.Owner, msg.TotalSupply, msg.Name); err != nil {
		return nil, err
	}
	ledger.GetLogger(ctx).Info("vault created", "vault", msg.VaultID, "supply", msg.TotalSupply.String())
	return &ledger.DeliverResult{
		Data: []byte(msg.VaultID),
		Tags: []ledger.Tag{{Key: "token.vault", Value: msg.VaultID}},
	}, nil
}

func (h *CreateVaultHandler) validate(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*CreateVaultMsg, error) {
	var msg CreateVaultMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := x.RequireRole(ctx, db, h.auth, h.roles, x.RoleVaultManager); err != nil {
		return nil, err
	}
	return &msg, nil
}

// TransferHandler moves fractions owned by the signer.
type TransferHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ledger.Handler = (*TransferHandler)(nil)

func (h *TransferHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *TransferHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, src, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Transfer(db, msg.VaultID, src, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

func (h *TransferHandler) validate(ctx context.Context, tx ledger.Tx) (*TransferMsg, ledger.Address, error) {
	var msg TransferMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	src, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, src, nil
}

// RedeemHandler redeems vaults on behalf of their owner.
type RedeemHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ledger.Handler = (*RedeemHandler)(nil)

func (h *RedeemHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *RedeemHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Redeem(db, msg.VaultID, caller); err != nil {
		return nil, err
	}
	ledger.GetLogger(ctx).Info("vault redeemed", "vault", msg.VaultID)
	return &ledger.DeliverResult{}, nil
}

func (h *RedeemHandler) validate(ctx context.Context, tx ledger.Tx) (*RedeemMsg, ledger.Address, error) {
	var msg RedeemMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, caller, nil
}

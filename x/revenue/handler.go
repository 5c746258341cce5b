package revenue

import (
	"context"
	"encoding/json"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/token"
)

// RegisterRoutes registers handlers of revenue messages. Anyone can add
// revenue, claims pay the signer.
func RegisterRoutes(r ledger.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(AddRevenueMsg{}.Path(), &AddRevenueHandler{auth: auth, ctrl: ctrl})
	r.Handle(ClaimMsg{}.Path(), &ClaimHandler{auth: auth, ctrl: ctrl})
}

// AddRevenueHandler deposits revenue.
type AddRevenueHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ledger.Handler = (*AddRevenueHandler)(nil)

func (h *AddRevenueHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *AddRevenueHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, payer, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Deposit(ctx, db, msg.VaultID, payer, msg.Amount); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{
		Tags: []ledger.Tag{{Key: "revenue.vault", Value: msg.VaultID}},
	}, nil
}

func (h *AddRevenueHandler) validate(ctx context.Context, tx ledger.Tx) (*AddRevenueMsg, ledger.Address, error) {
	var msg AddRevenueMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	payer, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, payer, nil
}

// ClaimHandler pays claimable revenue.
type ClaimHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ ledger.Handler = (*ClaimHandler)(nil)

func (h *ClaimHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	msg, holder, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	amount, err := h.ctrl.Claimable(db, msg.VaultID, holder)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, errors.Wrapf(errors.ErrNothingToClaim, "vault %q", msg.VaultID)
	}
	return &ledger.CheckResult{Log: amount.String()}, nil
}

func (h *ClaimHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, holder, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	paid, err := h.ctrl.Claim(ctx, db, msg.VaultID, holder)
	if err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{
		Data: []byte(paid.String()),
		Tags: []ledger.Tag{
			{Key: "revenue.vault", Value: msg.VaultID},
			{Key: "revenue.holder", Value: holder.String()},
		},
	}, nil
}

func (h *ClaimHandler) validate(ctx context.Context, tx ledger.Tx) (*ClaimMsg, ledger.Address, error) {
	var msg ClaimMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	holder, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, holder, nil
}

// HolderQuery selects a vault and optionally one of its holders.
type HolderQuery struct {
	VaultID string         `json:"vault_id"`
	Address ledger.Address `json:"address,omitempty"`
}

// RegisterQuery registers "/revenue/state" returning revenue counters of a
// vault and "/revenue/claimable" returning what a holder can claim.
func RegisterQuery(qr ledger.QueryRouter, tokens token.Reader) {
	ctrl := NewController(tokens, nil)
	qr.Register("/revenue/state", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		q, err := decode(data)
		if err != nil {
			return nil, err
		}
		return ctrl.State(db, q.VaultID)
	}))
	qr.Register("/revenue/claimable", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		q, err := decode(data)
		if err != nil {
			return nil, err
		}
		if err := q.Address.Validate(); err != nil {
			return nil, errors.Wrap(err, "address")
		}
		return ctrl.Claimable(db, q.VaultID, q.Address)
	}))
}

func decode(data []byte) (*HolderQuery, error) {
	var q HolderQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "query data: %s", err)
	}
	if !token.IsVaultID(q.VaultID) {
		return nil, errors.Wrapf(errors.ErrInput, "vault id %q", q.VaultID)
	}
	return &q, nil
}

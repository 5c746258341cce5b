package roles

import (
	"context"
	"encoding/json"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x"
)

// RegisterRoutes registers grant and revoke handlers. Both require the
// signer to hold the admin role.
func RegisterRoutes(r ledger.Registry, auth x.Authenticator, s *Store) {
	r.Handle(GrantMsg{}.Path(), &handler{auth: auth, store: s, grant: true})
	r.Handle(RevokeMsg{}.Path(), &handler{auth: auth, store: s})
}

// RegisterQuery registers "/roles/has" answering whether an address holds
// a role.
func RegisterQuery(qr ledger.QueryRouter) {
	s := NewStore()
	qr.Register("/roles/has", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		var q GrantMsg
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "query data: %s", err)
		}
		if err := q.Validate(); err != nil {
			return nil, err
		}
		return s.HasRole(context.Background(), db, q.Role, q.Address), nil
	}))
}

type handler struct {
	auth  x.Authenticator
	store *Store
	grant bool
}

func (h *handler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *handler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	role, addr, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if h.grant {
		err = h.store.Grant(db, role, addr)
	} else {
		err = h.store.Revoke(db, role, addr)
	}
	if err != nil {
		return nil, err
	}
	ledger.GetLogger(ctx).Info("role changed", "role", role, "address", addr.String(), "granted", h.grant)
	return &ledger.DeliverResult{}, nil
}

func (h *handler) validate(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (string, ledger.Address, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", nil, errors.Wrap(err, "cannot get transaction message")
	}
	var role string
	var addr ledger.Address
	switch m := msg.(type) {
	case *GrantMsg:
		role, addr = m.Role, m.Address
	case *RevokeMsg:
		role, addr = m.Role, m.Address
	default:
		return "", nil, errors.Wrapf(errors.ErrType, "unexpected message %T", msg)
	}
	if err := msg.Validate(); err != nil {
		return "", nil, errors.Wrap(err, "invalid message")
	}
	if _, err := x.RequireRole(ctx, db, h.auth, h.store, x.RoleAdmin); err != nil {
		return "", nil, err
	}
	return role, addr, nil
}

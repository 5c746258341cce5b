package token

import (
	"encoding/json"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// VaultQuery selects a vault and optionally one of its holders.
type VaultQuery struct {
	VaultID string         `json:"vault_id"`
	Address ledger.Address `json:"address,omitempty"`
}

// RegisterQuery registers "/token/vaults" returning a vault and
// "/token/balance" returning the balance of a holder.
func RegisterQuery(qr ledger.QueryRouter) {
	ctrl := NewController()
	qr.Register("/token/vaults", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		q, err := decode(data)
		if err != nil {
			return nil, err
		}
		return ctrl.Vault(db, q.VaultID)
	}))
	qr.Register("/token/balance", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		q, err := decode(data)
		if err != nil {
			return nil, err
		}
		if err := q.Address.Validate(); err != nil {
			return nil, errors.Wrap(err, "address")
		}
		return ctrl.BalanceOf(db, q.VaultID, q.Address)
	}))
}

func decode(data []byte) (*VaultQuery, error) {
	var q VaultQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "query data: %s", err)
	}
	if !IsVaultID(q.VaultID) {
		return nil, errors.Wrapf(errors.ErrInput, "vault id %q", q.VaultID)
	}
	return &q, nil
}

package token

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// GenesisVault is a vault created at genesis. Holders receive their
// balance from the owner.
type GenesisVault struct {
	VaultID     string           `json:"vault_id"`
	Owner       ledger.Address   `json:"owner"`
	TotalSupply ledger.Amount    `json:"total_supply"`
	Name        string           `json:"name"`
	Holders     []GenesisHolding `json:"holders"`
}

// GenesisHolding assigns a balance to a holder.
type GenesisHolding struct {
	Address ledger.Address `json:"address"`
	Balance ledger.Amount  `json:"balance"`
}

// Initializer creates vaults declared in the genesis file under the
// "token" key.
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

func (Initializer) FromGenesis(ctx context.Context, opts ledger.Options, db ledger.KVStore) error {
	var vaults []GenesisVault
	if err := opts.ReadOptions("token", &vaults); err != nil {
		return err
	}
	ctrl := NewController()
	for _, v := range vaults {
		if _, err := ctrl.CreateVault(db, v.VaultID, v.Owner, v.TotalSupply, v.Name); err != nil {
			return errors.Wrapf(err, "vault %q", v.VaultID)
		}
		for _, h := range v.Holders {
			if err := ctrl.Transfer(db, v.VaultID, v.Owner, h.Address, h.Balance); err != nil {
				return errors.Wrapf(err, "vault %q holder %s", v.VaultID, h.Address)
			}
		}
	}
	return nil
}

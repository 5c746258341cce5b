package royalty

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/history"
	"github.com/iov-one/ledger/x/shares"
)

// GenesisPool is a pool created at genesis.
type GenesisPool struct {
	AssetID       string          `json:"asset_id"`
	Beneficiaries []shares.Change `json:"beneficiaries"`
}

// Initializer creates pools listed in the genesis file under the "royalty"
// key.
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

func (Initializer) FromGenesis(ctx context.Context, opts ledger.Options, db ledger.KVStore) error {
	var pools []GenesisPool
	if err := opts.ReadOptions("royalty", &pools); err != nil {
		return err
	}
	// Pools are created without funds, no transfer happens.
	ctrl := NewController(nil, history.NewRecorder())
	for _, p := range pools {
		msg := CreatePoolMsg{AssetID: p.AssetID, Beneficiaries: p.Beneficiaries}
		addrs, bps := msg.Split()
		if _, err := ctrl.CreatePool(ctx, db, p.AssetID, addrs, bps); err != nil {
			return errors.Wrapf(err, "pool %q", p.AssetID)
		}
	}
	return nil
}

package roles

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Initializer grants roles listed in the genesis file:
//    "roles": {"admin": ["iov1..."], "pool_manager": ["iov1..."]}
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

func (Initializer) FromGenesis(ctx context.Context, opts ledger.Options, db ledger.KVStore) error {
	var genesis map[string][]ledger.Address
	if err := opts.ReadOptions("roles", &genesis); err != nil {
		return err
	}
	s := NewStore()
	for role, addrs := range genesis {
		for _, a := range addrs {
			if err := s.Grant(db, role, a); err != nil {
				return errors.Wrapf(err, "role %q", role)
			}
		}
	}
	return nil
}

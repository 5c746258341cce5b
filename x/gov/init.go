package gov

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/gconf"
)

// Initializer loads the governance configuration from the "conf" section of
// the genesis file.
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

func (Initializer) FromGenesis(ctx context.Context, opts ledger.Options, db ledger.KVStore) error {
	var conf Configuration
	return gconf.InitConfig(db, opts, confKey, &conf)
}

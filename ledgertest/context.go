package ledgertest

import (
	"context"
	"time"

	"github.com/iov-one/ledger"
)

// BlockTime is the wall clock time used by contexts created with Ctx.
var BlockTime = time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)

// Ctx returns a context of a block at given height. Each block is ten
// seconds after the previous one.
func Ctx(height int64) context.Context {
	ctx := context.Background()
	ctx = ledger.WithHeight(ctx, height)
	ctx = ledger.WithBlockTime(ctx, BlockTime.Add(time.Duration(height)*10*time.Second))
	return ctx
}

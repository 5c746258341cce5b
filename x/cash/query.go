package cash

import (
	"encoding/json"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// BalanceQuery selects a single account.
type BalanceQuery struct {
	Address ledger.Address `json:"address"`
}

// RegisterQuery will register "/cash/balance" returning the balance of
// the requested account.
func RegisterQuery(qr ledger.QueryRouter) {
	c := NewController(NewBucket())
	qr.Register("/cash/balance", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		var q BalanceQuery
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "query data: %s", err)
		}
		if err := q.Address.Validate(); err != nil {
			return nil, errors.Wrap(err, "address")
		}
		return c.Balance(db, q.Address)
	}))
}

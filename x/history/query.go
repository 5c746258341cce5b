package history

import (
	"encoding/json"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// RecordQuery selects a single record.
type RecordQuery struct {
	Index uint64 `json:"index"`
}

// BeneficiaryQuery selects records of a single beneficiary.
type BeneficiaryQuery struct {
	Address ledger.Address `json:"address"`
}

// RegisterQuery registers history queries:
//   /history/records      {"index": n}         -> Record
//   /history/beneficiary  {"address": addr}    -> []uint64
//   /history/count                             -> uint64
func RegisterQuery(qr ledger.QueryRouter) {
	r := NewRecorder()
	qr.Register("/history/records", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		var q RecordQuery
		if err := decode(data, &q); err != nil {
			return nil, err
		}
		return r.Get(db, q.Index)
	}))
	qr.Register("/history/beneficiary", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		var q BeneficiaryQuery
		if err := decode(data, &q); err != nil {
			return nil, err
		}
		if err := q.Address.Validate(); err != nil {
			return nil, errors.Wrap(err, "address")
		}
		return r.HistoryOf(db, q.Address)
	}))
	qr.Register("/history/count", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		return r.Count(db)
	}))
}

func decode(data []byte, dest interface{}) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrEmpty, "query data")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrapf(errors.ErrInput, "query data: %s", err)
	}
	return nil
}

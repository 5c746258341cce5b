package royalty

import (
	"encoding/json"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/history"
)

// PoolQuery selects a pool and optionally one of its beneficiaries.
type PoolQuery struct {
	AssetID string         `json:"asset_id"`
	Address ledger.Address `json:"address,omitempty"`
}

// WithdrawableResponse is returned by the "/royalty/withdrawable" query.
type WithdrawableResponse struct {
	Withdrawable ledger.Amount `json:"withdrawable"`
	Withdrawn    ledger.Amount `json:"withdrawn"`
}

// RegisterQuery registers "/royalty/pools" returning a pool with its
// beneficiaries and counters, and "/royalty/withdrawable" returning what a
// beneficiary can withdraw and has withdrawn.
func RegisterQuery(qr ledger.QueryRouter) {
	ctrl := NewController(nil, history.NewRecorder())
	qr.Register("/royalty/pools", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		q, err := decode(data)
		if err != nil {
			return nil, err
		}
		return ctrl.Pool(db, q.AssetID)
	}))
	qr.Register("/royalty/withdrawable", ledger.QueryHandlerFunc(func(db ledger.ReadOnlyKVStore, data []byte) (interface{}, error) {
		q, err := decode(data)
		if err != nil {
			return nil, err
		}
		if err := q.Address.Validate(); err != nil {
			return nil, errors.Wrap(err, "address")
		}
		var res WithdrawableResponse
		if res.Withdrawable, err = ctrl.Withdrawable(db, q.AssetID, q.Address); err != nil {
			return nil, err
		}
		if res.Withdrawn, err = ctrl.WithdrawnAmount(db, q.AssetID, q.Address); err != nil {
			return nil, err
		}
		return &res, nil
	}))
}

func decode(data []byte) (*PoolQuery, error) {
	var q PoolQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "query data: %s", err)
	}
	if err := validateAssetID(q.AssetID); err != nil {
		return nil, err
	}
	return &q, nil
}

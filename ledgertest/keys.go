package ledgertest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/ledger"
)

var condSeq uint64

// NewCondition returns a new, unique condition. Each call returns a
// different condition, so that addresses of test participants never clash.
func NewCondition() ledger.Condition {
	n := atomic.AddUint64(&condSeq, 1)
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, n)
	return ledger.NewCondition("test", "user", data)
}

// NewAddress returns the address of a new, unique condition.
func NewAddress() ledger.Address {
	return NewCondition().Address()
}

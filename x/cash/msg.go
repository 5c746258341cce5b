package cash

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Ensure we implement the Msg interface
var _ ledger.Msg = (*SendMsg)(nil)

const maxMemoSize int = 128

// SendMsg moves value between two accounts. Source must sign the
// transaction.
type SendMsg struct {
	Source      ledger.Address `json:"source"`
	Destination ledger.Address `json:"destination"`
	Amount      ledger.Amount  `json:"amount"`
	Memo        string         `json:"memo,omitempty"`
}

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}

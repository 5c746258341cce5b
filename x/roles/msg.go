package roles

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

var _ ledger.Msg = (*GrantMsg)(nil)
var _ ledger.Msg = (*RevokeMsg)(nil)

// GrantMsg assigns a role to an address.
type GrantMsg struct {
	Role    string         `json:"role"`
	Address ledger.Address `json:"address"`
}

func (GrantMsg) Path() string {
	return "roles/grant"
}

func (m *GrantMsg) Validate() error {
	return validate(m.Role, m.Address)
}

// RevokeMsg removes a role from an address.
type RevokeMsg struct {
	Role    string         `json:"role"`
	Address ledger.Address `json:"address"`
}

func (RevokeMsg) Path() string {
	return "roles/revoke"
}

func (m *RevokeMsg) Validate() error {
	return validate(m.Role, m.Address)
}

func validate(role string, addr ledger.Address) error {
	var errs error
	if !isRole(role) {
		errs = errors.AppendField(errs, "Role", errors.ErrInput)
	}
	return errors.AppendField(errs, "Address", addr.Validate())
}

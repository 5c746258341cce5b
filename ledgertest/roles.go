package ledgertest

import (
	"context"

	"github.com/iov-one/ledger"
)

// Roles is a mock implementing x.RoleChecker interface. It grants a role to
// every address listed under that role name.
type Roles map[string][]ledger.Address

func (r Roles) HasRole(ctx context.Context, db ledger.ReadOnlyKVStore, role string, addr ledger.Address) bool {
	for _, a := range r[role] {
		if a.Equals(addr) {
			return true
		}
	}
	return false
}

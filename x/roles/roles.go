package roles

import (
	"context"
	"regexp"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x"
)

var isRole = regexp.MustCompile(`^[a-z_]{3,32}$`).MatchString

// Membership marks that an address holds a role.
type Membership struct {
	Role    string         `json:"role"`
	Address ledger.Address `json:"address"`
}

var _ orm.Model = (*Membership)(nil)

func (m *Membership) Validate() error {
	var errs error
	if !isRole(m.Role) {
		errs = errors.AppendField(errs, "Role", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Address", m.Address.Validate())
	return errs
}

func membershipKey(role string, addr ledger.Address) []byte {
	return orm.CompositeKey([]byte(role), addr)
}

// Store keeps role memberships in the database.
type Store struct {
	b orm.ModelBucket
}

var _ x.RoleChecker = (*Store)(nil)

// NewStore returns a store using the default bucket.
func NewStore() *Store {
	return &Store{b: orm.NewModelBucket("roles", &Membership{})}
}

// Grant assigns the role to the address. Granting a role twice is a no-op.
func (s *Store) Grant(db ledger.KVStore, role string, addr ledger.Address) error {
	m := &Membership{Role: role, Address: addr}
	if err := m.Validate(); err != nil {
		return err
	}
	return s.b.Put(db, membershipKey(role, addr), m)
}

// Revoke removes the role from the address. It fails with ErrNotFound if
// the address does not hold the role.
func (s *Store) Revoke(db ledger.KVStore, role string, addr ledger.Address) error {
	if err := s.b.Delete(db, membershipKey(role, addr)); err != nil {
		return errors.Wrapf(err, "%s role of %s", role, addr)
	}
	return nil
}

// HasRole returns true if the address holds the role. Lookup failures are
// treated as a missing role.
func (s *Store) HasRole(ctx context.Context, db ledger.ReadOnlyKVStore, role string, addr ledger.Address) bool {
	if len(addr) == 0 {
		return false
	}
	return s.b.Has(db, membershipKey(role, addr)) == nil
}

package x

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Well known roles. Privileged operations are allowed only to callers that
// were granted the corresponding role.
const (
	RoleAdmin        = "admin"
	RolePoolManager  = "pool_manager"
	RoleVaultManager = "vault_manager"
)

// RoleChecker answers whether an address was granted a role. It is the
// injected authorization capability, engines never decide it themselves.
type RoleChecker interface {
	HasRole(ctx context.Context, db ledger.ReadOnlyKVStore, role string, addr ledger.Address) bool
}

// RoleCheckerFunc is an adapter to allow the use of ordinary functions as
// role checkers.
type RoleCheckerFunc func(ctx context.Context, db ledger.ReadOnlyKVStore, role string, addr ledger.Address) bool

// HasRole calls fn(ctx, db, role, addr).
func (fn RoleCheckerFunc) HasRole(ctx context.Context, db ledger.ReadOnlyKVStore, role string, addr ledger.Address) bool {
	return fn(ctx, db, role, addr)
}

// RequireRole returns the address of the main signer if it was granted
// given role, and ErrUnauthorized otherwise.
func RequireRole(ctx context.Context, db ledger.ReadOnlyKVStore, auth Authenticator, roles RoleChecker, role string) (ledger.Address, error) {
	signer := MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	addr := signer.Address()
	if !roles.HasRole(ctx, db, role, addr) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s is missing the %q role", addr, role)
	}
	return addr, nil
}

// RequireSigner returns the address of the main signer or ErrUnauthorized
// if the transaction is not signed.
func RequireSigner(ctx context.Context, auth Authenticator) (ledger.Address, error) {
	signer := MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return signer.Address(), nil
}

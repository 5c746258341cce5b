/*
Package sigs attaches the signer of a transaction to the context.

Transactions reach the ledger already authenticated, this package does not
verify any cryptographic signature. It only validates the declared signer
and makes it available to the extensions through the Authenticate type.
*/
package sigs

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// SignedTx is implemented by transactions that declare their signer.
type SignedTx interface {
	ledger.Tx
	// GetSigner returns the condition that authorized this
	// transaction.
	GetSigner() ledger.Condition
}

//----------------- Decorator ----------------
//
// This is just a binding from the functionality into the
// Application stack, not much business logic here.

// Decorator adds the signer of a transaction to the context.
type Decorator struct {
	allowMissingSigs bool
}

var _ ledger.Decorator = Decorator{}

// NewDecorator returns a default authentication decorator, which requires
// a signer to be present.
func NewDecorator() Decorator {
	return Decorator{
		allowMissingSigs: false,
	}
}

// AllowMissingSigs allows us to pass along items with no signer.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

// Check attaches the signer before calling down the stack.
func (d Decorator) Check(ctx context.Context, store ledger.KVStore, tx ledger.Tx, next ledger.Checker) (*ledger.CheckResult, error) {
	ctx, err := d.withTxSigners(ctx, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, store, tx)
}

// Deliver attaches the signer before calling down the stack.
func (d Decorator) Deliver(ctx context.Context, store ledger.KVStore, tx ledger.Tx, next ledger.Deliverer) (*ledger.DeliverResult, error) {
	ctx, err := d.withTxSigners(ctx, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

func (d Decorator) withTxSigners(ctx context.Context, tx ledger.Tx) (context.Context, error) {
	var signers []ledger.Condition
	if stx, ok := tx.(SignedTx); ok {
		if s := stx.GetSigner(); s != nil {
			if err := s.Validate(); err != nil {
				return nil, errors.Wrap(err, "signer")
			}
			signers = append(signers, s)
		}
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return withSigners(ctx, signers), nil
}

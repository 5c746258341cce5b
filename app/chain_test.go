package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/store"
)

func TestChain(t *testing.T) {
	c1 := &ledgertest.Decorator{}
	c2 := &ledgertest.Decorator{}
	c3 := &ledgertest.Decorator{}
	var nilDecorator *ledgertest.Decorator
	h := &ledgertest.Handler{}

	stack := ChainDecorators(c1, nil, c2).Chain(nilDecorator, c3).WithHandler(h)

	ctx := context.Background()
	db := store.MemStore()
	tx := &ledgertest.Tx{}

	_, err := stack.Check(ctx, db, tx)
	require.NoError(t, err)
	_, err = stack.Deliver(ctx, db, tx)
	require.NoError(t, err)

	for _, d := range []*ledgertest.Decorator{c1, c2, c3} {
		assert.Equal(t, 1, d.CheckCallCount())
		assert.Equal(t, 1, d.DeliverCallCount())
	}
	assert.Equal(t, 2, h.CallCount())

	// an error stops the chain before the handler is reached
	c2.DeliverErr = errors.ErrUnauthorized
	_, err = stack.Deliver(ctx, db, tx)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 2, c1.DeliverCallCount())
	assert.Equal(t, 2, c2.DeliverCallCount())
	assert.Equal(t, 1, c3.DeliverCallCount())
	assert.Equal(t, 1, h.DeliverCallCount())
}

func TestChainDoesNotShareBackingArray(t *testing.T) {
	base := ChainDecorators(&ledgertest.Decorator{}, &ledgertest.Decorator{})

	first := &ledgertest.Decorator{}
	second := &ledgertest.Decorator{}
	a := base.Chain(first).WithHandler(&ledgertest.Handler{})
	b := base.Chain(second).WithHandler(&ledgertest.Handler{})

	_, err := a.Deliver(context.Background(), store.MemStore(), &ledgertest.Tx{})
	require.NoError(t, err)
	_, err = b.Deliver(context.Background(), store.MemStore(), &ledgertest.Tx{})
	require.NoError(t, err)

	assert.Equal(t, 1, first.DeliverCallCount())
	assert.Equal(t, 1, second.DeliverCallCount())
}

var _ ledger.Decorator = (*ledgertest.Decorator)(nil)

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/store"
)

// TxResult is the outcome of a single transaction of a block. A non zero
// code means the transaction failed and none of its changes were applied.
type TxResult struct {
	Code uint32       `json:"code"`
	Log  string       `json:"log,omitempty"`
	Data []byte       `json:"data,omitempty"`
	Tags []ledger.Tag `json:"tags,omitempty"`
}

// IsErr returns true if the transaction failed.
func (r TxResult) IsErr() bool {
	return r.Code != errors.SuccessCode
}

func errorResult(err error, debug bool) TxResult {
	err = errors.Redact(err, debug)
	return TxResult{
		Code: errors.Code(err),
		Log:  err.Error(),
	}
}

// Application applies ordered blocks of transactions on top of a committed
// state. All methods are safe for concurrent use, blocks are applied one at
// a time.
type Application struct {
	mu sync.Mutex

	name        string
	logger      log.Logger
	store       *CommitStore
	decoder     *MsgRegistry
	handler     ledger.Handler
	queryRouter ledger.QueryRouter
	initializer ledger.Initializer
	debug       bool

	// chainID is loaded from db in initialization, saved once in InitChain
	chainID string
	// height of the last delivered block
	height int64
}

// NewApplication loads the last committed state of given store.
func NewApplication(
	name string,
	commitStore ledger.CommitKVStore,
	decoder *MsgRegistry,
	handler ledger.Handler,
	queryRouter ledger.QueryRouter,
	initializer ledger.Initializer,
) (*Application, error) {
	cs, err := NewCommitStore(commitStore)
	if err != nil {
		return nil, err
	}
	chainID, err := loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	height, err := loadHeight(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	return &Application{
		name:        name,
		logger:      log.NewNopLogger(),
		store:       cs,
		decoder:     decoder,
		handler:     handler,
		queryRouter: queryRouter,
		initializer: initializer,
		chainID:     chainID,
		height:      height,
	}, nil
}

// WithLogger sets the logger used by the application and all handlers.
func (a *Application) WithLogger(logger log.Logger) *Application {
	a.logger = logger
	return a
}

// WithDebug disables redaction of internal errors in transaction results.
func (a *Application) WithDebug(debug bool) *Application {
	a.debug = debug
	return a
}

// ChainID returns the chain id set at genesis or an empty string.
func (a *Application) ChainID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chainID
}

// Height returns the height of the last delivered block.
func (a *Application) Height() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.height
}

// LastCommit returns the version and hash of the last committed state.
func (a *Application) LastCommit() ledger.CommitID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.CommitInfo()
}

// InitChain stores the chain id and loads the initial state of every
// extension. It can be called only once in the lifetime of a chain. The
// initial state becomes visible with the next commit.
func (a *Application) InitChain(gen Genesis) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain %s", a.chainID)
	}
	ctx := ledger.WithLogger(context.Background(), a.logger.With("call", "init_chain"))
	err := store.Atomic(a.store.DeliverStore(), func(db ledger.KVStore) error {
		if err := saveChainID(db, gen.ChainID); err != nil {
			return err
		}
		return a.initializer.FromGenesis(ctx, gen.AppState, db)
	})
	if err != nil {
		return errors.Wrap(err, "genesis")
	}
	a.chainID = gen.ChainID
	a.logger.Info("chain initialized", "chain_id", gen.ChainID)
	return nil
}

// DeliverBlock applies transactions in order. Every transaction is
// processed in isolation: a failing one is reported in its result and
// leaves no trace in the state. An error is returned only if the block
// itself cannot be processed.
func (a *Application) DeliverBlock(height int64, blockTime time.Time, txs [][]byte) ([]TxResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	if height <= a.height {
		return nil, errors.Wrapf(errors.ErrInput, "block height %d not above %d", height, a.height)
	}
	if blockTime.IsZero() {
		return nil, errors.Wrap(errors.ErrInput, "block time required")
	}
	ctx := a.blockContext(height, blockTime)

	results := make([]TxResult, len(txs))
	for i, raw := range txs {
		results[i] = a.deliverTx(ctx, raw)
	}
	if err := saveHeight(a.store.DeliverStore(), height); err != nil {
		return nil, err
	}
	a.height = height
	a.logger.Info("block delivered", "height", height, "txs", len(txs))
	return results, nil
}

func (a *Application) deliverTx(ctx context.Context, raw []byte) TxResult {
	tx, err := a.loadTx(raw)
	if err != nil {
		return errorResult(err, a.debug)
	}
	ctx = ledger.WithLogInfo(ctx, "call", "deliver_tx", "path", tx.Path)
	res, err := a.handler.Deliver(ctx, a.store.DeliverStore(), tx)
	if err != nil {
		return errorResult(err, a.debug)
	}
	return TxResult{Log: res.Log, Data: res.Data, Tags: res.Tags}
}

// CheckTx runs the checks of a transaction against the delivered state as
// if it was included in the next block. Nothing is written.
func (a *Application) CheckTx(raw []byte) TxResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.loadTx(raw)
	if err != nil {
		return errorResult(err, a.debug)
	}
	ctx := ledger.WithLogInfo(a.blockContext(a.height+1, time.Now()), "call", "check_tx", "path", tx.Path)
	cache := a.store.DeliverStore().CacheWrap()
	defer cache.Discard()
	res, err := a.handler.Check(ctx, cache, tx)
	if err != nil {
		return errorResult(err, a.debug)
	}
	return TxResult{Log: res.Log}
}

// Commit persists all delivered blocks and returns the new version and
// the hash of the whole state.
func (a *Application) Commit() (ledger.CommitID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, err := a.store.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	a.logger.Info("committed state", "version", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return id, nil
}

// Rollback drops everything delivered since the last commit.
func (a *Application) Rollback() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.store.Rollback()
	height, err := loadHeight(a.store.DeliverStore())
	if err != nil {
		return err
	}
	a.height = height
	return nil
}

// Query runs a registered query against the last committed state and
// returns its JSON serialized result.
func (a *Application) Query(path string, data []byte) (res []byte, err error) {
	defer errors.Recover(&err)

	h := a.queryRouter.Handler(path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "unknown query path %q", path)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	out, err := h.Query(a.store.QueryStore(), data)
	if err != nil {
		return nil, errors.Redact(err, a.debug)
	}
	res, err = json.Marshal(out)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrHuman, "cannot serialize %T: %s", out, err)
	}
	return res, nil
}

// QueryPaths returns all registered query paths.
func (a *Application) QueryPaths() []string {
	return a.queryRouter.Paths()
}

func (a *Application) blockContext(height int64, blockTime time.Time) context.Context {
	ctx := context.Background()
	ctx = ledger.WithChainID(ctx, a.chainID)
	ctx = ledger.WithHeight(ctx, height)
	ctx = ledger.WithBlockTime(ctx, blockTime)
	return ledger.WithLogger(ctx, a.logger.With("height", height))
}

// loadTx calls the decoder, and capture any panics
func (a *Application) loadTx(raw []byte) (tx *Tx, err error) {
	defer errors.Recover(&err)
	return a.decoder.Decode(raw)
}

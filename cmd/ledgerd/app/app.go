/*
Package app links together all the various components
to construct the ledgerd application.
*/
package app

import (
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/store/iavl"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/gov"
	"github.com/iov-one/ledger/x/history"
	"github.com/iov-one/ledger/x/revenue"
	"github.com/iov-one/ledger/x/roles"
	"github.com/iov-one/ledger/x/royalty"
	"github.com/iov-one/ledger/x/sigs"
	"github.com/iov-one/ledger/x/token"
	"github.com/iov-one/ledger/x/utils"
)

// Name is reported by the application and used as the metrics namespace.
const Name = "ledgerd"

// Authenticator returns the authentication used by all handlers. Signers
// are declared by the transaction and trusted.
func Authenticator() x.Authenticator {
	return sigs.Authenticate{}
}

// Chain returns a chain of decorators, to handle authentication, logging,
// metrics and recovery. A nil metrics decorator is skipped.
func Chain(metrics *utils.Metrics) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		// some messages, like gov/execute, are valid without a signer
		sigs.NewDecorator().AllowMissingSigs(),
		utils.NewActionTagger(),
		// a failed transaction never leaves partial changes
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching every message supported by the
// ledger.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()

	roleStore := roles.NewStore()
	bank := cash.NewController(cash.NewBucket())
	tokens := token.NewController()

	roles.RegisterRoutes(r, authFn, roleStore)
	cash.RegisterRoutes(r, authFn, bank)
	token.RegisterRoutes(r, authFn, roleStore, tokens)
	royalty.RegisterRoutes(r, authFn, roleStore, royalty.NewController(bank, history.NewRecorder()))
	revenue.RegisterRoutes(r, authFn, revenue.NewController(tokens, bank))
	gov.RegisterRoutes(r, authFn, roleStore, gov.NewController(tokens))
	return r
}

// QueryRouter returns a query router exposing the state of every extension.
func QueryRouter() ledger.QueryRouter {
	r := ledger.NewQueryRouter()
	tokens := token.NewController()
	r.RegisterAll(
		roles.RegisterQuery,
		cash.RegisterQuery,
		token.RegisterQuery,
		history.RegisterQuery,
		royalty.RegisterQuery,
		func(qr ledger.QueryRouter) { revenue.RegisterQuery(qr, tokens) },
		func(qr ledger.QueryRouter) { gov.RegisterQuery(qr, tokens) },
	)
	return r
}

// Initializers returns the genesis loaders of all extensions. Order
// matters: configuration and roles come first, pools last.
func Initializers() ledger.Initializer {
	return ledger.ChainInitializers(
		gov.Initializer{},
		roles.Initializer{},
		cash.Initializer{},
		token.Initializer{},
		royalty.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator chain.
func Stack(metrics *utils.Metrics) ledger.Handler {
	authFn := Authenticator()
	return Chain(metrics).WithHandler(Router(authFn))
}

// Application constructs the ledger application on top of given state.
// registry may be nil to disable metrics.
func Application(kv ledger.CommitKVStore, registry prometheus.Registerer) (*app.Application, error) {
	var metrics *utils.Metrics
	if registry != nil {
		metrics = utils.NewMetrics(registry)
	}
	return app.NewApplication(Name, kv, Messages(), Stack(metrics), QueryRouter(), Initializers())
}

// CommitKVStore returns an initialized store that persists the data to the
// named path.
func CommitKVStore(dbPath string) (iavl.CommitStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return iavl.CommitStore{}, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}
	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name)
}

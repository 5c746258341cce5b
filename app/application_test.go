package app

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/store/iavl"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/sigs"
	"github.com/iov-one/ledger/x/utils"
)

var blockTime = time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestApp(t testing.TB, db ledger.CommitKVStore) *Application {
	t.Helper()

	auth := sigs.Authenticate{}
	router := NewRouter()
	cash.RegisterRoutes(router, auth, cash.NewController(cash.NewBucket()))
	handler := ChainDecorators(
		utils.NewRecovery(),
		sigs.NewDecorator(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(router)

	qr := ledger.NewQueryRouter()
	cash.RegisterQuery(qr)

	a, err := NewApplication("test", db, NewMsgRegistry(&cash.SendMsg{}), handler, qr, ledger.ChainInitializers(cash.Initializer{}))
	require.NoError(t, err)
	return a
}

func testGenesis(t testing.TB, accts ...cash.GenesisAccount) Genesis {
	t.Helper()
	raw, err := json.Marshal(accts)
	require.NoError(t, err)
	return Genesis{
		ChainID:  "test-chain",
		AppState: ledger.Options{"cash": raw},
	}
}

func sendTx(t testing.TB, signer ledger.Condition, src, dst ledger.Address, amount uint64) []byte {
	t.Helper()
	tx, err := NewTx(signer, &cash.SendMsg{Source: src, Destination: dst, Amount: ledger.NewAmount(amount)})
	require.NoError(t, err)
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return raw
}

func queryBalance(t testing.TB, a *Application, addr ledger.Address) string {
	t.Helper()
	data, err := json.Marshal(cash.BalanceQuery{Address: addr})
	require.NoError(t, err)
	res, err := a.Query("/cash/balance", data)
	require.NoError(t, err)
	var amount string
	require.NoError(t, json.Unmarshal(res, &amount))
	return amount
}

func TestApplicationLifecycle(t *testing.T) {
	a := newTestApp(t, iavl.NewMemCommitStore())

	alice := ledgertest.NewCondition()
	bob := ledgertest.NewAddress()

	_, err := a.DeliverBlock(1, blockTime, nil)
	assert.True(t, errors.ErrState.Is(err), "block before genesis")

	gen := testGenesis(t, cash.GenesisAccount{Address: alice.Address(), Balance: ledger.NewAmount(100)})
	require.NoError(t, a.InitChain(gen))
	assert.Equal(t, "test-chain", a.ChainID())
	assert.True(t, errors.ErrState.Is(a.InitChain(gen)), "second genesis")

	results, err := a.DeliverBlock(1, blockTime, [][]byte{
		sendTx(t, alice, alice.Address(), bob, 30),
		sendTx(t, alice, alice.Address(), bob, 1000),
		[]byte("garbage"),
		sendTx(t, nil, alice.Address(), bob, 1),
		sendTx(t, ledgertest.NewCondition(), alice.Address(), bob, 1),
	})
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.False(t, results[0].IsErr(), results[0].Log)
	assert.NotEmpty(t, results[0].Tags)
	assert.Equal(t, errors.ErrInsufficientAmount.Code(), results[1].Code)
	assert.Equal(t, errors.ErrInput.Code(), results[2].Code)
	assert.Equal(t, errors.ErrUnauthorized.Code(), results[3].Code)
	assert.Equal(t, errors.ErrUnauthorized.Code(), results[4].Code)

	// delivered but not committed state is not visible to queries
	assert.Equal(t, "0", queryBalance(t, a, bob))

	first, err := a.Commit()
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Version)
	assert.NotEmpty(t, first.Hash)
	assert.Equal(t, first, a.LastCommit())
	assert.Equal(t, "70", queryBalance(t, a, alice.Address()))
	assert.Equal(t, "30", queryBalance(t, a, bob))

	_, err = a.DeliverBlock(1, blockTime, nil)
	assert.True(t, errors.ErrInput.Is(err), "height must increase")
	_, err = a.DeliverBlock(2, time.Time{}, nil)
	assert.True(t, errors.ErrInput.Is(err), "block time required")

	// a rolled back block leaves the state untouched
	results, err = a.DeliverBlock(2, blockTime.Add(time.Minute), [][]byte{
		sendTx(t, alice, alice.Address(), bob, 70),
	})
	require.NoError(t, err)
	require.False(t, results[0].IsErr())
	require.NoError(t, a.Rollback())
	assert.EqualValues(t, 1, a.Height())

	_, err = a.DeliverBlock(2, blockTime.Add(time.Minute), nil)
	require.NoError(t, err)
	second, err := a.Commit()
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Version)
	assert.NotEqual(t, first.Hash, second.Hash, "block height is part of the state")
	assert.Equal(t, "70", queryBalance(t, a, alice.Address()))
}

func TestApplicationCheckTx(t *testing.T) {
	a := newTestApp(t, iavl.NewMemCommitStore())
	alice := ledgertest.NewCondition()
	require.NoError(t, a.InitChain(testGenesis(t, cash.GenesisAccount{Address: alice.Address(), Balance: ledger.NewAmount(5)})))

	res := a.CheckTx(sendTx(t, alice, alice.Address(), ledgertest.NewAddress(), 5))
	assert.False(t, res.IsErr(), res.Log)

	res = a.CheckTx(sendTx(t, nil, alice.Address(), ledgertest.NewAddress(), 5))
	assert.Equal(t, errors.ErrUnauthorized.Code(), res.Code)

	res = a.CheckTx([]byte(`{"path": "cash/send", "msg": {"amount": "0"}}`))
	assert.True(t, res.IsErr())
}

func TestApplicationQueryErrors(t *testing.T) {
	a := newTestApp(t, iavl.NewMemCommitStore())

	_, err := a.Query("/cash/unknown", nil)
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = a.Query("/cash/balance", []byte("{"))
	assert.True(t, errors.ErrInput.Is(err))

	assert.Equal(t, []string{"/cash/balance"}, a.QueryPaths())
}

func TestInvalidGenesisIsNotApplied(t *testing.T) {
	a := newTestApp(t, iavl.NewMemCommitStore())
	alice := ledgertest.NewAddress()
	gen := testGenesis(t,
		cash.GenesisAccount{Address: alice, Balance: ledger.NewAmount(1)},
		cash.GenesisAccount{Address: alice, Balance: ledger.NewAmount(2)},
	)

	err := a.InitChain(gen)
	assert.True(t, errors.ErrDuplicate.Is(err))
	assert.Equal(t, "", a.ChainID())

	gen.ChainID = "x"
	err = a.InitChain(gen)
	assert.True(t, errors.ErrInput.Is(err), "chain id too short")
}

func TestApplicationReopen(t *testing.T) {
	dir, err := ioutil.TempDir("", "app")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	db, err := iavl.NewCommitStore(dir, "state")
	require.NoError(t, err)
	a := newTestApp(t, db)
	alice := ledgertest.NewCondition()
	require.NoError(t, a.InitChain(testGenesis(t, cash.GenesisAccount{Address: alice.Address(), Balance: ledger.NewAmount(10)})))
	_, err = a.DeliverBlock(3, blockTime, nil)
	require.NoError(t, err)
	want, err := a.Commit()
	require.NoError(t, err)
	db.Close()

	db, err = iavl.NewCommitStore(dir, "state")
	require.NoError(t, err)
	defer db.Close()
	a = newTestApp(t, db)
	assert.Equal(t, "test-chain", a.ChainID())
	assert.Equal(t, want, a.LastCommit())
	assert.EqualValues(t, 3, a.Height())
	_, err = a.DeliverBlock(3, blockTime, nil)
	assert.True(t, errors.ErrInput.Is(err))
	assert.Equal(t, "10", queryBalance(t, a, alice.Address()))
}

func TestLoadGenesis(t *testing.T) {
	dir, err := ioutil.TempDir("", "genesis")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	good := filepath.Join(dir, "good.json")
	require.NoError(t, ioutil.WriteFile(good, []byte(`{"chain_id": "test-chain", "app_state": {"cash": []}}`), 0600))
	gen, err := LoadGenesis(good)
	require.NoError(t, err)
	assert.Equal(t, "test-chain", gen.ChainID)
	assert.Contains(t, gen.AppState, "cash")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, ioutil.WriteFile(bad, []byte(`{"chain_id": "!"}`), 0600))
	_, err = LoadGenesis(bad)
	assert.True(t, errors.ErrInput.Is(err))

	_, err = LoadGenesis(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.ErrInput.Is(err))
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	"go.uber.org/goleak"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	ledgerd "github.com/iov-one/ledger/cmd/ledgerd/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/store/iavl"
	"github.com/iov-one/ledger/x/cash"
)

func TestMain(m *testing.M) {
	// goleveldb drains its memory pool for up to a second after Close.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/syndtr/goleveldb/leveldb.(*DB).mpoolDrain"))
}

const testGenesis = `{
  "chain_id": "ledger-test",
  "app_state": {
    "conf": {"gov": {"quorum_bps": 5100}},
    "cash": [{"address": %q, "balance": "100"}]
  }
}`

func genesisFor(addr ledger.Address) string {
	return strings.Replace(testGenesis, "%q", `"`+addr.String()+`"`, 1)
}

func newTestServer(t *testing.T, funded ledger.Address) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	a, err := ledgerd.Application(iavl.NewMemCommitStore(), registry)
	require.NoError(t, err)
	var gen app.Genesis
	require.NoError(t, json.Unmarshal([]byte(genesisFor(funded)), &gen))
	require.NoError(t, a.InitChain(gen))
	_, err = a.Commit()
	require.NoError(t, err)
	return httptest.NewServer(newServer(a, log.NewNopLogger(), registry, false)), registry
}

func sendTx(t *testing.T, signer ledger.Condition, dst ledger.Address, amount uint64) json.RawMessage {
	t.Helper()
	tx, err := app.NewTx(signer, &cash.SendMsg{Source: signer.Address(), Destination: dst, Amount: ledger.NewAmount(amount)})
	require.NoError(t, err)
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return raw
}

func postJSON(t *testing.T, c *http.Client, url string, payload interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := c.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestServerBlock(t *testing.T) {
	alice := ledgertest.NewCondition()
	bob := ledgertest.NewAddress()
	ts, _ := newTestServer(t, alice.Address())
	defer ts.Close()
	c := ts.Client()

	resp := postJSON(t, c, ts.URL+"/block", Block{
		Height: 1,
		Time:   time.Now(),
		Txs: []json.RawMessage{
			sendTx(t, alice, bob, 40),
			sendTx(t, alice, bob, 400),
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res BlockResult
	decodeBody(t, resp, &res)
	assert.EqualValues(t, 1, res.Height)
	assert.EqualValues(t, 2, res.Version, "genesis commit is version 1")
	assert.NotEmpty(t, res.AppHash)
	require.Len(t, res.Results, 2)
	assert.False(t, res.Results[0].IsErr(), res.Results[0].Log)
	assert.Equal(t, errors.ErrInsufficientAmount.Code(), res.Results[1].Code)

	// the same height cannot be applied twice
	resp = postJSON(t, c, ts.URL+"/block", Block{Height: 1, Time: time.Now()})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var fail ErrorResponse
	decodeBody(t, resp, &fail)
	assert.Equal(t, errors.ErrInput.Code(), fail.Code)

	resp, err := c.Get(ts.URL + "/block")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = c.Get(ts.URL + "/query/cash/balance?data=" + url.QueryEscape(`{"address": "`+bob.String()+`"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balance string
	decodeBody(t, resp, &balance)
	assert.Equal(t, "40", balance)

	resp, err = c.Get(ts.URL + "/status")
	require.NoError(t, err)
	var status StatusResponse
	decodeBody(t, resp, &status)
	assert.Equal(t, "ledger-test", status.ChainID)
	assert.EqualValues(t, 1, status.Height)
	assert.Equal(t, res.AppHash, status.AppHash)
	assert.Equal(t, ledger.Version(), status.Release)
}

func TestServerQueryErrors(t *testing.T) {
	ts, _ := newTestServer(t, ledgertest.NewAddress())
	defer ts.Close()
	c := ts.Client()

	resp, err := c.Get(ts.URL + "/query/cash/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = c.Post(ts.URL+"/query/cash/balance", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	var fail ErrorResponse
	decodeBody(t, resp, &fail)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errors.ErrInput.Code(), fail.Code)
}

func TestServerCheck(t *testing.T) {
	alice := ledgertest.NewCondition()
	ts, _ := newTestServer(t, alice.Address())
	defer ts.Close()
	c := ts.Client()

	resp, err := c.Post(ts.URL+"/check", "application/json", bytes.NewReader(sendTx(t, alice, ledgertest.NewAddress(), 1)))
	require.NoError(t, err)
	var res app.TxResult
	decodeBody(t, resp, &res)
	assert.False(t, res.IsErr(), res.Log)

	resp, err = c.Post(ts.URL+"/check", "application/json", strings.NewReader(`{"path": "cash/nope"}`))
	require.NoError(t, err)
	decodeBody(t, resp, &res)
	assert.Equal(t, errors.ErrNotFound.Code(), res.Code)
}

func TestServerMetrics(t *testing.T) {
	alice := ledgertest.NewCondition()
	ts, _ := newTestServer(t, alice.Address())
	defer ts.Close()
	c := ts.Client()

	resp := postJSON(t, c, ts.URL+"/block", Block{
		Height: 1,
		Time:   time.Now(),
		Txs:    []json.RawMessage{sendTx(t, alice, ledgertest.NewAddress(), 1)},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := c.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ledger_transactions_total{outcome="ok",path="cash/send",phase="deliver"} 1`)
}

func TestServeShutdown(t *testing.T) {
	a, err := ledgerd.Application(iavl.NewMemCommitStore(), nil)
	require.NoError(t, err)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, l, a, log.NewNopLogger(), nil, false) }()

	c := &http.Client{Transport: &http.Transport{}}
	defer c.CloseIdleConnections()
	require.Eventually(t, func() bool {
		resp, err := c.Get("http://" + l.Addr().String() + "/status")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	resp, err := c.Get("http://" + l.Addr().String() + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "metrics disabled")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestCommands(t *testing.T) {
	home, err := ioutil.TempDir("", "ledgerd")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	alice := ledgertest.NewCondition()
	bob := ledgertest.NewAddress()

	genPath := filepath.Join(home, "genesis.json")
	require.NoError(t, ioutil.WriteFile(genPath, []byte(genesisFor(alice.Address())), 0600))

	blockRaw, err := json.Marshal(Block{
		Height: 1,
		Time:   time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
		Txs:    []json.RawMessage{sendTx(t, alice, bob, 25)},
	})
	require.NoError(t, err)
	blockPath := filepath.Join(home, "block.json")
	require.NoError(t, ioutil.WriteFile(blockPath, blockRaw, 0600))

	run := func(args ...string) (string, error) {
		var out, errOut bytes.Buffer
		cmd := rootCommand()
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs(append([]string{"--home", home}, args...))
		err := cmd.Execute()
		return out.String(), err
	}

	out, err := run("init", genPath)
	require.NoError(t, err)
	assert.Contains(t, out, "initialized chain ledger-test")
	_, err = os.Stat(filepath.Join(home, "config", "genesis.json"))
	assert.NoError(t, err)

	_, err = run("init", genPath)
	assert.True(t, errors.ErrState.Is(err), "genesis can be loaded only once")

	out, err = run("apply", blockPath)
	require.NoError(t, err)
	var res BlockResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Results, 1)
	assert.False(t, res.Results[0].IsErr(), res.Results[0].Log)

	out, err = run("query", "/cash/balance", `{"address": "`+bob.String()+`"}`)
	require.NoError(t, err)
	assert.Equal(t, "\"25\"\n", out)

	out, err = run("version")
	require.NoError(t, err)
	assert.Equal(t, ledger.Version()+"\n", out)
}

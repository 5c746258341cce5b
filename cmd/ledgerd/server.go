package main

import (
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/errors"
)

// maxBodySize limits the size of a block or transaction submitted over
// HTTP.
const maxBodySize = 8 << 20

// newServer returns the HTTP API of the application. A nil gatherer
// disables the metrics endpoint.
func newServer(a *app.Application, logger log.Logger, gatherer prometheus.Gatherer, debug bool) http.Handler {
	s := &server{app: a, logger: logger, debug: debug}
	mux := http.NewServeMux()
	mux.HandleFunc("/block", s.handleBlock)
	mux.HandleFunc("/check", s.handleCheck)
	mux.HandleFunc("/query/", s.handleQuery)
	mux.HandleFunc("/status", s.handleStatus)
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

type server struct {
	app    *app.Application
	logger log.Logger
	debug  bool
}

// StatusResponse describes the last committed state.
type StatusResponse struct {
	ChainID string `json:"chain_id"`
	Height  int64  `json:"height"`
	Version int64  `json:"version"`
	AppHash string `json:"app_hash"`
	Release string `json:"release"`
}

func (s *server) handleBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, errors.Wrap(errors.ErrInput, "POST required"))
		return
	}
	var b Block
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&b); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrapf(errors.ErrInput, "decode block: %s", err))
		return
	}
	res, err := applyBlock(s.app, &b)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Info("block applied", "height", res.Height, "version", res.Version, "hash", res.AppHash)
	s.writeJSON(w, http.StatusOK, res)
}

func (s *server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, errors.Wrap(errors.ErrInput, "POST required"))
		return
	}
	raw, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrapf(errors.ErrInput, "read transaction: %s", err))
		return
	}
	s.writeJSON(w, http.StatusOK, s.app.CheckTx(raw))
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	path := "/" + strings.TrimPrefix(r.URL.Path, "/query/")
	var data []byte
	switch r.Method {
	case http.MethodGet:
		data = []byte(r.URL.Query().Get("data"))
	case http.MethodPost:
		raw, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, errors.Wrapf(errors.ErrInput, "read query: %s", err))
			return
		}
		data = raw
	default:
		s.writeError(w, http.StatusMethodNotAllowed, errors.Wrap(errors.ErrInput, "GET or POST required"))
		return
	}
	res, err := s.app.Query(path, data)
	if err != nil {
		status := http.StatusBadRequest
		if errors.ErrNotFound.Is(err) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(res)
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := s.app.LastCommit()
	s.writeJSON(w, http.StatusOK, StatusResponse{
		ChainID: s.app.ChainID(),
		Height:  s.app.Height(),
		Version: id.Version,
		AppHash: hex.EncodeToString(id.Hash),
		Release: ledger.Version(),
	})
}

// ErrorResponse is returned with every non 2xx status.
type ErrorResponse struct {
	Code  uint32 `json:"code"`
	Error string `json:"error"`
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Debug("request failed", "err", err)
	err = errors.Redact(err, s.debug)
	s.writeJSON(w, status, ErrorResponse{Code: errors.Code(err), Error: err.Error()})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("cannot write response", "err", err)
	}
}

package main

import (
	"io"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/ledger/internal/config"
)

// newLogger returns a logger writing to w, filtered by the configured
// level.
func newLogger(w io.Writer, cfg *config.Config) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(w)).With("module", programName)
	opt, err := log.AllowLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}

package main

import (
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/errors"
)

// Block is an ordered list of transactions applied at once.
type Block struct {
	Height int64             `json:"height"`
	Time   time.Time         `json:"time"`
	Txs    []json.RawMessage `json:"txs"`
}

// BlockResult is the outcome of an applied and committed block.
type BlockResult struct {
	Height  int64          `json:"height"`
	Results []app.TxResult `json:"results"`
	Version int64          `json:"version"`
	AppHash string         `json:"app_hash"`
}

func loadBlock(path string) (*Block, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read block: %s", err)
	}
	var b Block
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "decode block: %s", err)
	}
	return &b, nil
}

// applyBlock delivers and commits the block. If the block cannot be
// processed nothing is committed.
func applyBlock(a *app.Application, b *Block) (*BlockResult, error) {
	txs := make([][]byte, len(b.Txs))
	for i, tx := range b.Txs {
		txs[i] = tx
	}
	results, err := a.DeliverBlock(b.Height, b.Time, txs)
	if err != nil {
		if rerr := a.Rollback(); rerr != nil {
			return nil, errors.Append(err, rerr)
		}
		return nil, err
	}
	id, err := a.Commit()
	if err != nil {
		return nil, err
	}
	return &BlockResult{
		Height:  b.Height,
		Results: results,
		Version: id.Version,
		AppHash: hex.EncodeToString(id.Hash),
	}, nil
}

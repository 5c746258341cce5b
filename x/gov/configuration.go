package gov

import (
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
)

const confKey = "gov"

// Configuration holds governance parameters shared by all vaults.
type Configuration struct {
	// QuorumBps is the part of the total supply, in basis points, that must
	// vote for an outcome to be valid.
	QuorumBps uint32 `json:"quorum_bps"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	if c.QuorumBps == 0 || c.QuorumBps > Whole {
		return errors.Field("QuorumBps", errors.ErrInput, "must be between 1 and 10000")
	}
	return nil
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confKey, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

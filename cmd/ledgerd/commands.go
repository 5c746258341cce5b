package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/ledger/app"
	ledgerd "github.com/iov-one/ledger/cmd/ledgerd/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/internal/config"
)

// openApplication loads the application state of the configured home. The
// returned function releases the database.
func openApplication(cfg *config.Config, logger log.Logger, registry prometheus.Registerer) (*app.Application, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath()), 0750); err != nil {
		return nil, nil, errors.Wrapf(errors.ErrDatabase, "create data directory: %s", err)
	}
	db, err := ledgerd.CommitKVStore(cfg.DBPath())
	if err != nil {
		return nil, nil, err
	}
	a, err := ledgerd.Application(db, registry)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	a.WithLogger(logger).WithDebug(cfg.Debug)
	if cfg.ChainID != "" && a.ChainID() != "" && a.ChainID() != cfg.ChainID {
		db.Close()
		return nil, nil, errors.Wrapf(errors.ErrState, "state belongs to chain %q, not %q", a.ChainID(), cfg.ChainID)
	}
	return a, db.Close, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init <genesis.json>",
		Short: "Load the genesis into a fresh home directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			gen, err := app.LoadGenesis(args[0])
			if err != nil {
				return err
			}
			if cfg.ChainID != "" && cfg.ChainID != gen.ChainID {
				return errors.Wrapf(errors.ErrInput, "genesis chain %q does not match configured %q", gen.ChainID, cfg.ChainID)
			}
			a, closeDB, err := openApplication(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := a.InitChain(*gen); err != nil {
				return err
			}
			id, err := a.Commit()
			if err != nil {
				return err
			}
			if err := copyGenesis(args[0], cfg.GenesisPath()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized chain %s in %s, app hash %X\n", gen.ChainID, cfg.Home, id.Hash)
			return nil
		},
	}
}

func copyGenesis(src, dst string) error {
	raw, err := ioutil.ReadFile(src)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return errors.Wrapf(errors.ErrInput, "create config directory: %s", err)
	}
	if err := ioutil.WriteFile(dst, raw, 0640); err != nil {
		return errors.Wrapf(errors.ErrInput, "write genesis: %s", err)
	}
	return nil
}

func applyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <block.json>",
		Short: "Apply a block of transactions and commit the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			block, err := loadBlock(args[0])
			if err != nil {
				return err
			}
			a, closeDB, err := openApplication(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := applyBlock(a, block)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func queryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <path> [data]",
		Short: "Query the last committed state",
		Example: `  ledgerd query /royalty/pools '{"asset_id": "song-1"}'
  ledgerd query /history/count`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			a, closeDB, err := openApplication(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer closeDB()

			var data []byte
			if len(args) == 2 {
				data = []byte(args[1])
			}
			res, err := a.Query(args[0], data)
			if err != nil {
				return err
			}
			var out interface{}
			if err := json.Unmarshal(res, &out); err != nil {
				return errors.Wrap(errors.ErrHuman, err.Error())
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

// Package config loads the ledgerd daemon configuration. Values are read
// from defaults, then a YAML file, then LEDGER_ prefixed environment
// variables, each overriding the previous one.
package config

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

type ctxKey string

const configContextKey ctxKey = "ledger.config"

// WithContext returns a copy of ctx carrying cfg.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

// FromContext returns the configuration carried by ctx or the defaults if
// none was set.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configContextKey).(*Config); ok && cfg != nil {
		return cfg
	}
	return Default()
}

// FileName is the name of the configuration file inside of the home
// directory.
const FileName = "ledgerd.yaml"

// Config holds daemon settings. On-chain parameters are part of the
// genesis, not of this configuration.
type Config struct {
	Home       string `yaml:"home"`
	ChainID    string `yaml:"chainId"    split_words:"true"`
	LogLevel   string `yaml:"logLevel"   split_words:"true"`
	ListenAddr string `yaml:"listenAddr" split_words:"true"`
	Metrics    bool   `yaml:"metrics"`
	Debug      bool   `yaml:"debug"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	home := ".ledgerd"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".ledgerd")
	}
	return &Config{
		Home:       home,
		LogLevel:   "info",
		ListenAddr: "127.0.0.1:26680",
		Metrics:    true,
	}
}

// Load builds the configuration. If configFile is empty, the ledgerd.yaml
// file of the home directory is used when present.
func Load(configFile string) (*Config, error) {
	cfg := Default()
	if home := os.Getenv("LEDGER_HOME"); home != "" {
		cfg.Home = home
	}
	if configFile == "" {
		path := filepath.Join(cfg.Home, FileName)
		if _, err := os.Stat(path); err == nil {
			configFile = path
		}
	}
	if configFile != "" {
		buf, err := ioutil.ReadFile(configFile)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "reading config file: %s", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "parsing config file: %s", err)
		}
	}
	if err := envconfig.Process("ledger", cfg); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "processing environment: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if any setting is unusable.
func (c *Config) Validate() error {
	var errs error
	if c.Home == "" {
		errs = errors.AppendField(errs, "Home", errors.ErrEmpty)
	}
	if c.ChainID != "" && !ledger.IsValidChainID(c.ChainID) {
		errs = errors.AppendField(errs, "ChainID", errors.ErrInput)
	}
	switch c.LogLevel {
	case "debug", "info", "error", "none":
	default:
		errs = errors.AppendField(errs, "LogLevel", errors.Wrapf(errors.ErrInput, "unknown level %q", c.LogLevel))
	}
	if c.ListenAddr == "" {
		errs = errors.AppendField(errs, "ListenAddr", errors.ErrEmpty)
	}
	return errs
}

// DBPath returns the location of the state database.
func (c *Config) DBPath() string {
	return filepath.Join(c.Home, "data", "state.db")
}

// GenesisPath returns the location of the genesis file copied on init.
func (c *Config) GenesisPath() string {
	return filepath.Join(c.Home, "config", "genesis.json")
}

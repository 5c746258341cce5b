// ledgerd applies blocks of royalty, revenue and governance transactions
// to a persistent ledger state.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iov-one/ledger/internal/config"
)

const programName = "ledgerd"

var (
	globalFlags = struct {
		debug bool
		home  string
	}{}
	configFile string
)

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Royalty pool and fractional revenue ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging and unredacted errors")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.home, "home", "", "directory to store files under")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %+v", err)
		}
		// Override config with command line flags
		if globalFlags.home != "" {
			cfg.Home = globalFlags.home
		}
		if globalFlags.debug {
			cfg.Debug = true
			cfg.LogLevel = "debug"
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	rootCmd.AddCommand(initCommand())
	rootCmd.AddCommand(applyCommand())
	rootCmd.AddCommand(queryCommand())
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iov-one/ledger"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ledgerd version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), ledger.Version())
		},
	}
}

package main

import (
	"fmt"

	"github.com/japaniel/semnet/pkg/semnet"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the semnet version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "semnet %s\n", semnet.Version())
		},
	}
}

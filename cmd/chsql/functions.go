package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coregx/chsql/fx"
)

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the functions with a declared argument signature",
		Long: `List the functions with a declared argument signature.

Any other ClickHouse function can still be used in a definition; its
arguments are all treated as SQL text.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range fx.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

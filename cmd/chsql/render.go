package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coregx/chsql/internal/querydef"
)

func newRenderCmd(a *app) *cobra.Command {
	var dialect string

	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Print the SQL of query definitions",
		Example: `  # Render a definition with its own dialect (ClickHouse by default)
  chsql render queries/daily_visits.yaml

  # Render for PostgreSQL
  chsql render --dialect postgres queries/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, path := range args {
				def, err := querydef.Load(path)
				if err != nil {
					return definitionError("loading definition", err)
				}
				if dialect != "" {
					def.Dialect = dialect
				}

				q, err := def.Build()
				if err != nil {
					return definitionError(path, err)
				}
				sql, err := q.GenerateSQL()
				if err != nil {
					return definitionError(path, err)
				}

				if len(args) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "-- %s\n", displayName(def, path))
				}
				fmt.Fprintln(out, sql)
				a.log.Debug("query rendered", "file", path, "dialect", q.Dialect().Name())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dialect, "dialect", "", "render with this dialect instead of the definition's")
	return cmd
}

func displayName(def *querydef.Definition, path string) string {
	if def.Name != "" {
		return def.Name
	}
	return path
}

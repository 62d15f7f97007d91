package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coregx/chsql"
	"github.com/coregx/chsql/internal/querydef"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		params  []string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a query definition and print the rows as YAML",
		Example: `  # Run against the database from chsql.yaml
  chsql run queries/daily_visits.yaml

  # Bind {days:UInt32}
  chsql run queries/daily_visits.yaml --param days=7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := querydef.Load(args[0])
			if err != nil {
				return definitionError("loading definition", err)
			}

			db, err := openDB(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if d, ok := chsql.LookupDialect(def.Dialect); def.Dialect != "" && (!ok || d.Name() != db.Dialect().Name()) {
				a.log.Warn("definition dialect ignored", "definition", def.Dialect, "database", db.Dialect().Name())
			}

			q, err := def.Apply(db.Query())
			if err != nil {
				return definitionError(args[0], err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			ctx, driverArgs, err := bindParams(ctx, a.cfg.Database.Driver, params)
			if err != nil {
				return err
			}

			rows, err := q.Maps(ctx, driverArgs...)
			if err != nil {
				return queryError("running "+displayName(def, args[0]), err)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(rows); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&params, "param", nil, "query parameter as name=value (repeatable)")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "query timeout")
	return cmd
}

// openDB opens and pings the configured database.
func openDB(ctx context.Context, a *app) (*chsql.DB, error) {
	c := a.cfg.Database
	if c.DSN == "" {
		return nil, configError("opening database", errors.New("database.dsn is required"))
	}

	opts := []chsql.Option{
		chsql.WithLogger(a.log),
		chsql.WithDialect(c.DialectName()),
		chsql.WithMaxOpenConns(c.MaxOpenConns),
		chsql.WithMaxIdleConns(c.MaxIdleConns),
		chsql.WithStmtCacheCapacity(c.StmtCacheCapacity),
		chsql.WithHealthCheck(c.HealthCheckInterval),
	}
	if c.Validate {
		opts = append(opts, chsql.WithValidator(chsql.NewValidator()))
	}

	db, err := chsql.Open(c.Driver, c.DSN, opts...)
	if err != nil {
		return nil, dbConnectError("opening database", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, dbConnectError("connecting to database", err)
	}
	return db, nil
}

// bindParams turns --param flags into driver arguments. ClickHouse binds
// {name:Type} placeholders server-side from the context; other drivers get
// the values positionally, in flag order.
func bindParams(ctx context.Context, driver string, params []string) (context.Context, []any, error) {
	if len(params) == 0 {
		return ctx, nil, nil
	}

	named := make(clickhouse.Parameters, len(params))
	positional := make([]any, 0, len(params))
	for _, p := range params {
		name, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return ctx, nil, queryError("parsing parameters", fmt.Errorf("expected name=value, got %q", p))
		}
		named[strings.TrimSpace(name)] = value
		positional = append(positional, value)
	}

	if chsql.IsClickHouseDriver(driver) {
		return clickhouse.Context(ctx, clickhouse.WithParameters(named)), nil, nil
	}
	return ctx, positional, nil
}

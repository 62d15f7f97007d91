package main

import (
	"github.com/spf13/cobra"

	"github.com/coregx/chsql/internal/config"
	"github.com/coregx/chsql/internal/logger"
)

// app holds state shared by the subcommands, set during PersistentPreRunE.
type app struct {
	cfgFile    string
	cfg        *config.Config
	configPath string
	log        *logger.SlogAdapter
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "chsql",
		Short: "Render and run ClickHouse SELECT statements",
		Long: `chsql - ClickHouse query builder

chsql turns YAML query definitions into ClickHouse SQL using the same
function signatures and quoting rules as the Go query builder, and can run
them against ClickHouse or any other configured database/sql driver.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "help", "completion", "version", "functions":
				return nil
			}

			var err error
			a.cfg, a.configPath, err = config.Load(a.cfgFile)
			if err != nil {
				return configError("loading configuration", err)
			}

			a.log, err = logger.New(cmd.ErrOrStderr(), a.cfg.Log.Format, a.cfg.Log.Level)
			if err != nil {
				return configError("configuring logger", err)
			}
			if a.configPath != "" {
				a.log.Debug("configuration loaded", "path", a.configPath)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: auto-discover chsql.yaml)")

	root.AddCommand(
		newRenderCmd(a),
		newRunCmd(a),
		newFunctionsCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		exitWithError(err)
	}
}

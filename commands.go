// commands.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what every command needs once flags and environment are read.
type app struct {
	cfg    *Config
	logger *zap.Logger

	delimiter string
	numeric   string
	logLevel  string
	addr      string
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "sheetcalc [file]",
		Short: "Show a delimited file as a table and evaluate one range formula",
		Long: `sheetcalc reads a comma-delimited file (or the first sheet of an .xlsx workbook),
prints it as an aligned table and evaluates a formula such as =SUM(B2:B10).
Supported functions: SUM, AVERAGE, COUNT, MAX, MIN.

Without a file argument it asks whether to use the default file.`,
		Version:           Version,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return NewSession(cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg, a.logger).Run(cmd.Context(), file)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.delimiter, "delimiter", "", "field delimiter (default from SHEETCALC_DELIMITER or \",\")")
	flags.StringVar(&a.numeric, "numeric", "", "numeric parsing: strict or loose")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newShowCommand(a))
	root.AddCommand(newEvalCommand(a))
	root.AddCommand(newServeCommand(a))
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("delimiter") {
		cfg.Delimiter = a.delimiter
	}
	if cmd.Flags().Changed("numeric") {
		cfg.NumericMode = a.numeric
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("addr") {
		cfg.HTTPAddr = a.addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	encoding := "console"
	if cmd.Name() == "serve" {
		encoding = "json"
	}
	logger, err := initLogger(cfg.LogLevel, encoding)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	logger.Debug("configuration loaded", zap.String("config", cfg.String()))
	return nil
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Print FILE as an aligned table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := LoadFile(cmd.Context(), args[0], a.cfg.Delimiter)
			if err != nil {
				return err
			}
			return RenderTable(cmd.OutOrStdout(), t)
		},
	}
}

func newEvalCommand(a *app) *cobra.Command {
	var showTable bool
	cmd := &cobra.Command{
		Use:   "eval FILE FORMULA",
		Short: "Evaluate FORMULA against FILE and print the result",
		Example: `  sheetcalc eval data.csv '=SUM(B2:B4)'
  sheetcalc eval --table report.xlsx '=MAX(C2:C100)'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := LoadFile(cmd.Context(), args[0], a.cfg.Delimiter)
			if err != nil {
				return err
			}
			if showTable {
				if err := RenderTable(cmd.OutOrStdout(), t); err != nil {
					return err
				}
			}
			res := NewEvaluator(a.cfg.Mode(), a.logger).Evaluate(args[1], t.Cells)
			fmt.Fprintln(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showTable, "table", false, "print the table before the result")
	return cmd
}

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload, table and formula pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("starting sheetcalc server", zap.String("version", Version), zap.String("config", a.cfg.String()))
			return NewServer(a.cfg, a.logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&a.addr, "addr", "", "listen address (default from SHEETCALC_HTTP_ADDR or \":8080\")")
	return cmd
}

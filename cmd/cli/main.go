package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"datalens/adapters/loader"
	"datalens/app"
	"datalens/domain/dataset"
	"datalens/domain/table"
	"datalens/internal"
	"datalens/internal/config"
)

// cli holds state shared by every subcommand.
type cli struct {
	cfgFile  string
	output   string
	logLevel string

	cfg    *config.Config
	logger *internal.Logger
	reader *loader.Reader
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:           "datalens",
		Short:         "Analyze CSV, XLSX and JSON datasets from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				c.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&c.output, "output", "o", "json", "Output format: json or yaml")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newStatsCmd(c),
		newCorrelateCmd(c),
		newOutliersCmd(c),
		newTrendsCmd(c),
		newChartCmd(c),
		newSuggestCmd(c),
		newOverviewCmd(c),
		newReportCmd(c),
		newDemoCmd(c),
	)
	return rootCmd
}

func (c *cli) init() error {
	if _, err := parseOutput(c.output); err != nil {
		return err
	}
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.Log.Level
	if c.logLevel != "" {
		level = c.logLevel
	}
	// Diagnostics go to stderr so stdout stays machine readable.
	c.logger = internal.NewLogger(internal.ParseLogLevel(level))
	c.reader = loader.NewReader(loader.DefaultCoercionConfig())
	return nil
}

// readTable parses a local file, choosing the reader by extension.
func (c *cli) readTable(path string) (*table.Table, error) {
	ft, err := dataset.FileTypeFromName(path)
	if err != nil {
		return nil, err
	}
	t, err := c.reader.ReadFile(path, ft)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("read %s: %d rows, %d columns", path, t.NumRows(), t.NumColumns())
	return t, nil
}

func (c *cli) service() *app.AnalysisService {
	return app.NewAnalysisService(nil, app.Options{
		Bins:             c.cfg.Analysis.Bins,
		MaxPoints:        c.cfg.Analysis.MaxPoints,
		OutlierMaxValues: c.cfg.Analysis.OutlierMaxValues,
	}, nil, c.logger)
}

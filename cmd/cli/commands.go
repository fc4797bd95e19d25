package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datalens/app"
	"datalens/internal/analyzer"
	"datalens/internal/charts"
	"datalens/internal/report"
	"datalens/internal/testkit"
)

func newStatsCmd(c *cli) *cobra.Command {
	var bins int
	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Summary statistics for every numeric column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.readTable(args[0])
			if err != nil {
				return err
			}
			if bins == 0 {
				bins = c.cfg.Analysis.Bins
			}
			res, err := analyzer.Summarize(t, analyzer.SummaryOptions{Bins: bins})
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), c.output, res)
		},
	}
	cmd.Flags().IntVar(&bins, "bins", 0, "Histogram bins per column (default from config)")
	return cmd
}

func newCorrelateCmd(c *cli) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "correlate <file>",
		Short: "Correlation matrix and strong pairs of the numeric columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := analyzer.ParseCorrelationMethod(method)
			if err != nil {
				return err
			}
			t, err := c.readTable(args[0])
			if err != nil {
				return err
			}
			res, err := analyzer.Correlate(t, m)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), c.output, res)
		},
	}
	cmd.Flags().StringVar(&method, "method", "pearson", "Correlation method: pearson, spearman or kendall")
	return cmd
}

func newOutliersCmd(c *cli) *cobra.Command {
	var (
		method    string
		threshold float64
		maxValues int
	)
	cmd := &cobra.Command{
		Use:   "outliers <file>",
		Short: "Outliers per numeric column using IQR fences or z-scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := analyzer.ParseOutlierMethod(method)
			if err != nil {
				return err
			}
			t, err := c.readTable(args[0])
			if err != nil {
				return err
			}
			if maxValues == 0 {
				maxValues = c.cfg.Analysis.OutlierMaxValues
			}
			res, err := analyzer.DetectOutliers(t, analyzer.OutlierOptions{
				Method:    m,
				Threshold: threshold,
				MaxValues: maxValues,
			})
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), c.output, res)
		},
	}
	cmd.Flags().StringVar(&method, "method", "iqr", "Detection method: iqr or zscore")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Fence multiplier or z-score cutoff (default depends on method)")
	cmd.Flags().IntVar(&maxValues, "max-values", 0, "Outlier values listed per column (default from config)")
	return cmd
}

func newTrendsCmd(c *cli) *cobra.Command {
	var (
		maxPoints int
		columns   []string
	)
	cmd := &cobra.Command{
		Use:   "trends <file>",
		Short: "Linear trend of numeric columns over row order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.readTable(args[0])
			if err != nil {
				return err
			}
			if maxPoints == 0 {
				maxPoints = c.cfg.Analysis.MaxPoints
			}
			res, err := analyzer.AnalyzeTrends(t, analyzer.TrendOptions{MaxPoints: maxPoints, Columns: columns})
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), c.output, res)
		},
	}
	cmd.Flags().IntVar(&maxPoints, "max-points", 0, "Points kept per plotted series (default from config)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Restrict to these columns")
	return cmd
}

func newChartCmd(c *cli) *cobra.Command {
	var (
		p           charts.Params
		kind        string
		aggregation string
		method      string
		foldOther   bool
	)
	cmd := &cobra.Command{
		Use:   "chart <file>",
		Short: "Shape a table into a chart payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if p.Kind, err = charts.ParseKind(kind); err != nil {
				return err
			}
			if p.Aggregation, err = charts.ParseAggregation(aggregation); err != nil {
				return err
			}
			if method != "" {
				if p.Method, err = analyzer.ParseCorrelationMethod(method); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("fold-other") {
				p.FoldOther = &foldOther
			}
			t, err := c.readTable(args[0])
			if err != nil {
				return err
			}
			payload, err := charts.Shape(t, p)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), c.output, payload)
		},
	}
	f := cmd.Flags()
	f.StringVar(&kind, "kind", "bar", "Chart kind: bar, line, pie, scatter, heatmap or histogram")
	f.StringVar(&p.X, "x", "", "Category, x-axis or histogram column")
	f.StringSliceVar(&p.Y, "y", nil, "Value columns")
	f.StringVar(&aggregation, "aggregation", "", "Aggregation: sum, mean, count, min or max")
	f.IntVar(&p.Limit, "limit", 0, "Maximum number of categories")
	f.BoolVar(&foldOther, "fold-other", false, "Fold categories past the limit into Other (pie charts fold unless set to false)")
	f.IntVar(&p.Bins, "bins", 0, "Histogram bins")
	f.IntVar(&p.SampleSize, "sample-size", 0, "Scatter sample size")
	f.StringVar(&p.Color, "color", "", "Scatter color column")
	f.StringVar(&p.Size, "size", "", "Scatter size column")
	f.StringVar(&method, "method", "", "Heatmap correlation method")
	return cmd
}

func newSuggestCmd(c *cli) *cobra.Command {
	var x, y string
	cmd := &cobra.Command{
		Use:   "suggest <file>",
		Short: "Recommend chart kinds for one or two columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.readTable(args[0])
			if err != nil {
				return err
			}
			s, err := charts.SuggestForColumns(t, x, y)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), c.output, s)
		},
	}
	cmd.Flags().StringVar(&x, "x", "", "First column")
	cmd.Flags().StringVar(&y, "y", "", "Optional second column")
	_ = cmd.MarkFlagRequired("x")
	return cmd
}

func newOverviewCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "overview <file>",
		Short: "Row, column and missing-value counts with per-column kinds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.readTable(args[0])
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), c.output, analyzer.Overview(t))
		},
	}
}

func newReportCmd(c *cli) *cobra.Command {
	var (
		format            string
		bins              int
		correlationMethod string
		outlierMethod     string
		threshold         float64
		maxPoints         int
	)
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Run every engine and render a combined report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			t, err := c.readTable(args[0])
			if err != nil {
				return err
			}
			r, err := c.service().BuildReport(cmd.Context(), t, app.ReportOptions{
				Bins:              bins,
				CorrelationMethod: analyzer.CorrelationMethod(correlationMethod),
				Outliers: analyzer.OutlierOptions{
					Method:    analyzer.OutlierMethod(outlierMethod),
					Threshold: threshold,
				},
				Trends: analyzer.TrendOptions{MaxPoints: maxPoints},
			})
			if err != nil {
				return err
			}
			r.Title = args[0]

			out := cmd.OutOrStdout()
			switch f {
			case report.FormatMarkdown:
				_, err = fmt.Fprint(out, report.Markdown(r))
			case report.FormatHTML:
				_, err = out.Write(report.HTML(r))
			default:
				err = write(out, c.output, r)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&format, "format", "json", "Report format: json, markdown or html")
	f.IntVar(&bins, "bins", 0, "Histogram bins per column")
	f.StringVar(&correlationMethod, "correlation-method", "", "Correlation method")
	f.StringVar(&outlierMethod, "outlier-method", "", "Outlier method")
	f.Float64Var(&threshold, "threshold", 0, "Outlier threshold")
	f.IntVar(&maxPoints, "max-points", 0, "Points kept per trend series")
	return cmd
}

func newDemoCmd(c *cli) *cobra.Command {
	var (
		rows int
		seed int64
		out  string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write a synthetic sales dataset as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultSalesConfig()
			cfg.Rows = rows
			cfg.Seed = seed
			t, err := testkit.NewSalesDataGenerator(cfg).GenerateTable()
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return testkit.WriteCSV(cmd.OutOrStdout(), t)
			}

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := testkit.WriteCSV(file, t); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			c.logger.Info("wrote %d rows to %s", t.NumRows(), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 500, "Number of orders")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().StringVarP(&out, "out", "f", "", "Output path (stdout when empty)")
	return cmd
}

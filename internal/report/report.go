// Package report assembles engine results into a single document and renders
// it as markdown or HTML.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"datalens/domain/core"
	"datalens/internal/analyzer"
)

// Format selects the report rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts json, markdown (or md) and html. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", core.NewParameterError("format", fmt.Sprintf("unknown report format %q", s))
}

// Report is the combined analysis of one dataset.
type Report struct {
	DatasetID   core.ID                     `json:"datasetId,omitempty"`
	Title       string                      `json:"title"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	Overview    analyzer.DatasetOverview    `json:"overview"`
	Statistics  *analyzer.StatisticsResult  `json:"statistics"`
	Correlation *analyzer.CorrelationResult `json:"correlation"`
	Outliers    *analyzer.OutlierResult     `json:"outliers"`
	Trends      *analyzer.TrendsResult      `json:"trends"`
}

// maxStrongPairs bounds the correlation section.
const maxStrongPairs = 10

// Markdown renders r as a GitHub-flavoured markdown document.
func Markdown(r *Report) string {
	var b strings.Builder
	title := r.Title
	if title == "" {
		title = "Dataset report"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	}

	writeOverview(&b, r.Overview)
	if r.Statistics != nil {
		writeStatistics(&b, r.Statistics)
	}
	if r.Correlation != nil {
		writeCorrelation(&b, r.Correlation)
	}
	if r.Outliers != nil {
		writeOutliers(&b, r.Outliers)
	}
	if r.Trends != nil {
		writeTrends(&b, r.Trends)
	}
	return b.String()
}

// HTML renders r as a complete HTML page.
func HTML(r *Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(r)))

	title := r.Title
	if title == "" {
		title = "Dataset report"
	}
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

func writeOverview(b *strings.Builder, o analyzer.DatasetOverview) {
	b.WriteString("## Overview\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	row := func(k, v string) { fmt.Fprintf(b, "| %s | %s |\n", k, v) }
	row("Rows", fmt.Sprint(o.TotalRows))
	row("Columns", fmt.Sprint(o.TotalColumns))
	row("Numeric columns", fmt.Sprint(o.NumericColumns))
	row("Categorical columns", fmt.Sprint(o.CategoricalColumns))
	row("Datetime columns", fmt.Sprint(o.DatetimeColumns))
	row("Boolean columns", fmt.Sprint(o.BooleanColumns))
	row("Missing cells", fmt.Sprintf("%d (%s%%)", o.MissingCells, num(o.MissingPercentage)))
	row("Duplicate rows", fmt.Sprint(o.DuplicateRows))
	row("Completeness", num(o.Completeness)+"%")
	row("Uniqueness", num(o.Uniqueness)+"%")
	b.WriteString("\n")
}

func writeStatistics(b *strings.Builder, s *analyzer.StatisticsResult) {
	b.WriteString("## Statistics\n\n")
	if s.Reason != "" {
		fmt.Fprintf(b, "No statistics: %s.\n\n", s.Reason)
		return
	}
	b.WriteString("| Column | Count | Missing | Mean | Median | Std | Min | Max |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	s.Columns.Range(func(name string, c analyzer.ColumnSummary) bool {
		fmt.Fprintf(b, "| %s | %d | %d | %s | %s | %s | %s | %s |\n",
			escape(name), c.Count, c.MissingCount, num(c.Mean), num(c.Median), num(c.Std), num(c.Min), num(c.Max))
		return true
	})
	b.WriteString("\n")
}

func writeCorrelation(b *strings.Builder, c *analyzer.CorrelationResult) {
	fmt.Fprintf(b, "## Correlation (%s)\n\n", c.Method)
	if c.Reason != "" {
		fmt.Fprintf(b, "No correlation matrix: %s.\n\n", c.Reason)
		return
	}
	if len(c.StrongPairs) == 0 {
		b.WriteString("No moderate or strong correlations found.\n\n")
	} else {
		b.WriteString("| Column A | Column B | Coefficient | Strength | p-value |\n|---|---|---|---|---|\n")
		for i, p := range c.StrongPairs {
			if i == maxStrongPairs {
				break
			}
			fmt.Fprintf(b, "| %s | %s | %.3f | %s | %s |\n",
				escape(p.ColumnA), escape(p.ColumnB), p.Coefficient, p.Strength, p.PValue.Format(4))
		}
		b.WriteString("\n")
	}
	for _, e := range c.Excluded {
		fmt.Fprintf(b, "- `%s` excluded: %s\n", e.Column, e.Reason)
	}
	if len(c.Excluded) > 0 {
		b.WriteString("\n")
	}
}

func writeOutliers(b *strings.Builder, o *analyzer.OutlierResult) {
	fmt.Fprintf(b, "## Outliers (%s, threshold %g)\n\n", o.Method, o.Threshold)
	if o.Reason != "" {
		fmt.Fprintf(b, "No outlier analysis: %s.\n\n", o.Reason)
		return
	}
	b.WriteString("| Column | Status | Count | Share | Bounds |\n|---|---|---|---|---|\n")
	o.Columns.Range(func(name string, r analyzer.OutlierReport) bool {
		bounds := "n/a"
		if r.LowerBound.IsDefined() && r.UpperBound.IsDefined() {
			bounds = fmt.Sprintf("[%s, %s]", num(r.LowerBound), num(r.UpperBound))
		}
		fmt.Fprintf(b, "| %s | %s | %d | %s%% | %s |\n", escape(name), r.Status, r.Count, num(r.Percentage), bounds)
		return true
	})
	b.WriteString("\n")
}

func writeTrends(b *strings.Builder, t *analyzer.TrendsResult) {
	b.WriteString("## Trends\n\n")
	if t.Reason != "" {
		fmt.Fprintf(b, "No trends: %s.\n\n", t.Reason)
		return
	}

	// Strongest fits first.
	type entry struct {
		name string
		r    analyzer.TrendResult
	}
	var entries []entry
	t.Columns.Range(func(name string, r analyzer.TrendResult) bool {
		entries = append(entries, entry{name, r})
		return true
	})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].r.RSquared.Or(-1) > entries[j].r.RSquared.Or(-1)
	})

	b.WriteString("| Column | Direction | Slope | R² | Growth |\n|---|---|---|---|---|\n")
	for _, e := range entries {
		growth := "n/a"
		if e.r.GrowthRatePercentage.IsDefined() {
			growth = num(e.r.GrowthRatePercentage) + "%"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			escape(e.name), e.r.Direction, e.r.Slope.Format(4), e.r.RSquared.Format(3), growth)
	}
	for _, s := range t.Skipped {
		fmt.Fprintf(b, "\n- `%s` skipped: %s", s.Column, s.Reason)
	}
	b.WriteString("\n\n")
}

func num(n core.Number) string {
	return n.Format(2)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

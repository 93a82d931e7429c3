// Package report builds a deterministic markdown insights summary for
// one file: structural health, per-column statistics, outlier counts
// and distribution shape. The UI renders the markdown to HTML.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/shanky2010/batch-visual-insights/domain/table"
	"github.com/shanky2010/batch-visual-insights/internal/describe"
	"github.com/shanky2010/batch-visual-insights/internal/outlier"
)

// Markdown renders the insights report for a file.
func Markdown(f *table.DataFile) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Insights: %s\n\n", f.Name)
	fmt.Fprintf(&sb, "%d data rows, %d columns (version %d).\n\n", f.RowCount, f.ColumnCount, f.Version)

	writeValidation(&sb, f.Validation)
	writeColumns(&sb, f.Matrix)

	return sb.String()
}

// HTML renders the insights report as an HTML fragment.
func HTML(f *table.DataFile) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(Markdown(f)), p, renderer)
}

func writeValidation(sb *strings.Builder, v table.Validation) {
	sb.WriteString("## Data quality\n\n")
	if len(v.Issues) == 0 {
		sb.WriteString("No validation issues found.\n\n")
		return
	}

	fmt.Fprintf(sb, "%d ragged row(s), %d missing cell(s).\n\n", v.RaggedRows, v.MissingCells)

	// Per-row detail stays useful for small files but would swamp the
	// report for large ones.
	const maxIssues = 20
	for i, issue := range v.Issues {
		if i == maxIssues {
			fmt.Fprintf(sb, "- ... and %d more issue(s)\n", len(v.Issues)-maxIssues)
			break
		}
		fmt.Fprintf(sb, "- **%s** %s: %s\n", issue.Severity, issue.Code, issue.Message)
	}
	sb.WriteString("\n")
}

func writeColumns(sb *strings.Builder, m table.Matrix) {
	columns := table.NumericColumns(m)
	sb.WriteString("## Numeric columns\n\n")
	if len(columns) == 0 {
		sb.WriteString("No fully numeric columns detected.\n\n")
		return
	}

	sb.WriteString("| Column | Mean | Median | Std Dev | Min | Max | Outliers (IQR) | Shape |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|\n")

	for _, col := range columns {
		ex := table.ExtractNumeric(m, col.Index)
		summary := describe.FromValues(ex.Values)
		outliers := outlier.DetectIQR(ex.Values)
		profile := describe.Profile(ex.Values)

		shape := "irregular"
		switch {
		case profile.ZeroVariance:
			shape = "constant"
		case profile.IsNormal:
			shape = "approximately normal"
		}

		fmt.Fprintf(sb, "| %s | %s | %s | %s | %s | %s | %d | %s |\n",
			col.Name,
			cell(summary.Mean), cell(summary.Median), cell(summary.StdDev),
			cell(summary.Min), cell(summary.Max),
			len(outliers.Outliers), shape)
	}
	sb.WriteString("\n")
}

// cell formats one statistic for the table, with N/A for nil or
// non-finite values.
func cell(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "N/A"
	}
	return table.FormatNumber(*v)
}

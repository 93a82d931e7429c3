// Package export serializes computed statistics and comparisons for
// download. The CSV layout and its dual numeric formatting (exponential
// below a magnitude threshold, default conversion otherwise) are a
// compatibility contract with previously exported files and must not be
// tightened to fixed-decimal output.
package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shanky2010/batch-visual-insights/domain/table"
	"github.com/shanky2010/batch-visual-insights/internal/compare"
	"github.com/shanky2010/batch-visual-insights/internal/describe"
)

// statsHeader is the fixed first row of every statistics export.
const statsHeader = "Column Name,File Name,Mean,Median,Min,Max,Standard Deviation,Variance,Count"

// exponentThreshold is the absolute magnitude below which values print
// in exponential notation with 4 fractional digits.
const exponentThreshold = 0.0001

// Entry pairs one column selection with its computed summary.
type Entry struct {
	ColumnName string
	FileName   string
	Summary    describe.Summary
}

// StatsCSV renders summary entries as CSV text under the fixed header.
// Nil and non-finite statistics print as "N/A".
func StatsCSV(entries []Entry) string {
	var sb strings.Builder
	sb.WriteString(statsHeader)

	for _, e := range entries {
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(entryFields(e), ","))
	}

	return sb.String()
}

// EntriesFromComparison flattens comparison results into exportable
// entries, one row per (column, file).
func EntriesFromComparison(results []compare.Result) []Entry {
	var entries []Entry
	for _, r := range results {
		for _, f := range r.Files {
			entries = append(entries, Entry{
				ColumnName: r.ColumnName,
				FileName:   f.FileName,
				Summary:    f.Summary,
			})
		}
	}
	return entries
}

// StatsXLSX renders summary entries as an Excel workbook.
func StatsXLSX(entries []Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, name := range strings.Split(statsHeader, ",") {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, e := range entries {
		for col, field := range entryFields(e) {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, field); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// MatrixCSV renders a transformed matrix back to CSV text for download.
func MatrixCSV(m table.Matrix) string {
	return table.Serialize(m)
}

func entryFields(e Entry) []string {
	s := e.Summary
	return []string{
		csvField(e.ColumnName),
		csvField(e.FileName),
		formatStat(s.Mean),
		formatStat(s.Median),
		formatStat(s.Min),
		formatStat(s.Max),
		formatStat(s.StdDev),
		formatStat(s.Variance),
		strconv.Itoa(s.Count),
	}
}

// formatStat renders one statistic: "N/A" for nil or non-finite,
// exponential with 4 fractional digits below the magnitude threshold,
// default conversion otherwise.
func formatStat(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "N/A"
	}
	if math.Abs(*v) < exponentThreshold {
		return strconv.FormatFloat(*v, 'e', 4, 64)
	}
	return table.FormatNumber(*v)
}

func csvField(field string) string {
	if !strings.ContainsAny(field, ",\"") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `\"`) + `"`
}

// Package impute handles missing values by removing incomplete rows or
// filling missing cells with a column statistic or a caller-supplied
// replacement. Every operation returns a new matrix; the input is never
// mutated and the header row is never touched.
package impute

import (
	"github.com/shanky2010/batch-visual-insights/domain/core"
	"github.com/shanky2010/batch-visual-insights/domain/table"
	"github.com/shanky2010/batch-visual-insights/internal/describe"
)

// Method selects how missing cells are handled.
type Method string

const (
	// MethodRemove drops any data row containing at least one missing cell.
	MethodRemove Method = "remove"
	// MethodMean fills each missing cell with its column's mean.
	MethodMean Method = "mean"
	// MethodMedian fills each missing cell with its column's median.
	MethodMedian Method = "median"
	// MethodValue fills every missing cell with one replacement value.
	MethodValue Method = "value"
)

// Apply produces a new matrix with missing values handled by the given
// method. replacement is only consulted for MethodValue. A cell counts
// as missing when it is absent (short row) or empty after trimming.
func Apply(m table.Matrix, method Method, replacement string) (table.Matrix, error) {
	if len(m) == 0 {
		return table.Matrix{}, nil
	}

	switch method {
	case MethodRemove:
		return removeIncomplete(m), nil
	case MethodMean, MethodMedian:
		return fillWithStat(m, method), nil
	case MethodValue:
		return fillWithValue(m, replacement), nil
	default:
		return nil, core.ErrUnknownMethod
	}
}

// removeIncomplete drops data rows that have any missing cell, judged
// against the header width so short rows count as incomplete.
func removeIncomplete(m table.Matrix) table.Matrix {
	width := len(m.Headers())
	out := table.Matrix{append([]string(nil), m.Headers()...)}

	for row := 1; row < len(m); row++ {
		complete := true
		for col := 0; col < width; col++ {
			cell, ok := m.Cell(row, col)
			if table.IsMissing(cell, ok) {
				complete = false
				break
			}
		}
		if complete {
			out = append(out, append([]string(nil), m[row]...))
		}
	}

	return out
}

// fillWithStat replaces each missing cell with its column's mean or
// median, computed over that column's own numeric values. Columns with
// zero numeric values are left unmodified at missing positions.
func fillWithStat(m table.Matrix, method Method) table.Matrix {
	width := len(m.Headers())

	// One replacement per column, nil when the column has no numeric values.
	fill := make([]*string, width)
	for col := 0; col < width; col++ {
		summary := describe.Summarize(m, col)
		if summary.Count == 0 {
			continue
		}
		var v float64
		if method == MethodMean {
			v = *summary.Mean
		} else {
			v = *summary.Median
		}
		s := formatFill(v)
		fill[col] = &s
	}

	out := table.Matrix{append([]string(nil), m.Headers()...)}
	for row := 1; row < len(m); row++ {
		newRow := paddedCopy(m[row], width)
		for col := 0; col < width; col++ {
			if table.IsMissing(newRow[col], true) && fill[col] != nil {
				newRow[col] = *fill[col]
			}
		}
		out = append(out, newRow)
	}

	return out
}

// fillWithValue replaces every missing cell in every column with the
// caller-supplied replacement, kept as its literal string form.
func fillWithValue(m table.Matrix, replacement string) table.Matrix {
	width := len(m.Headers())

	out := table.Matrix{append([]string(nil), m.Headers()...)}
	for row := 1; row < len(m); row++ {
		newRow := paddedCopy(m[row], width)
		for col := 0; col < width; col++ {
			if table.IsMissing(newRow[col], true) {
				newRow[col] = replacement
			}
		}
		out = append(out, newRow)
	}

	return out
}

// paddedCopy copies a row, extending short rows with empty cells so a
// fill method can address every column position.
func paddedCopy(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	if len(row) > width {
		out = append([]string(nil), row...)
	}
	return out
}

func formatFill(v float64) string {
	return table.FormatNumber(v)
}

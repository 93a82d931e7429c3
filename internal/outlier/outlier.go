// Package outlier flags values outside IQR or Z-score bounds. Both
// strategies are pure: they never mutate their input, and the indices
// they report are positions within the input slice. Callers extracting
// values from a matrix should pass the table.Extraction row mapping to
// Result via WithRows so downstream code gets matrix row numbers
// without re-deriving the extraction.
package outlier

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// DefaultZThreshold is the Z-score cutoff when the caller does not
// supply one. The UI exposes 2.0, 2.5 and 3.0.
const DefaultZThreshold = 3.0

// Method selects a detection strategy.
type Method string

const (
	MethodIQR    Method = "iqr"
	MethodZScore Method = "zscore"
)

// Result holds detected outliers and their positions in the input
// slice. MatrixRows is populated by WithRows when the caller supplies
// the extraction mapping.
type Result struct {
	Outliers   []float64 `json:"outliers"`
	Indices    []int     `json:"indices"`
	MatrixRows []int     `json:"matrix_rows,omitempty"`
}

// WithRows resolves input positions to matrix row numbers using the
// extraction's position-to-row mapping.
func (r Result) WithRows(rows []int) Result {
	r.MatrixRows = make([]int, 0, len(r.Indices))
	for _, idx := range r.Indices {
		if idx >= 0 && idx < len(rows) {
			r.MatrixRows = append(r.MatrixRows, rows[idx])
		}
	}
	return r
}

// DetectIQR flags values strictly outside [q1-1.5*iqr, q3+1.5*iqr].
// Quartiles use the same floor-index convention as the statistics
// engine: q1/q3 at floor(n*0.25)/floor(n*0.75) of the sorted values.
func DetectIQR(values []float64) Result {
	result := Result{Outliers: []float64{}, Indices: []int{}}
	if len(values) == 0 {
		return result
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	q1 := sorted[int(float64(n)*0.25)]
	q3 := sorted[int(float64(n)*0.75)]
	iqr := q3 - q1

	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	for i, v := range values {
		if v < lower || v > upper {
			result.Outliers = append(result.Outliers, v)
			result.Indices = append(result.Indices, i)
		}
	}

	return result
}

// DetectZScore flags values whose absolute Z-score exceeds the
// threshold, using the population mean and standard deviation of the
// unsorted input. A constant column has stdDev 0; the explicit guard
// returns no outliers rather than relying on Inf/NaN comparison
// behavior.
func DetectZScore(values []float64, threshold float64) Result {
	result := Result{Outliers: []float64{}, Indices: []int{}}
	if len(values) == 0 {
		return result
	}
	if threshold <= 0 {
		threshold = DefaultZThreshold
	}

	mean, _ := stats.Mean(values)
	stdDev, _ := stats.StandardDeviationPopulation(values)
	if stdDev == 0 || math.IsNaN(stdDev) {
		return result
	}

	for i, v := range values {
		z := math.Abs(v-mean) / stdDev
		if z > threshold {
			result.Outliers = append(result.Outliers, v)
			result.Indices = append(result.Indices, i)
		}
	}

	return result
}

// Detect dispatches on method name. Unknown methods fall back to IQR.
func Detect(values []float64, method Method, zThreshold float64) Result {
	switch method {
	case MethodZScore:
		return DetectZScore(values, zThreshold)
	default:
		return DetectIQR(values)
	}
}

// Remove returns a copy of values with the detected outliers removed,
// preserving input order. Used by the transform that forks a file's
// matrix without its outlier rows.
func Remove(values []float64, result Result) []float64 {
	drop := make(map[int]bool, len(result.Indices))
	for _, idx := range result.Indices {
		drop[idx] = true
	}

	kept := make([]float64, 0, len(values)-len(result.Indices))
	for i, v := range values {
		if !drop[i] {
			kept = append(kept, v)
		}
	}
	return kept
}

// Package describe computes per-column descriptive statistics over the
// raw string matrix. Extraction silently drops missing and non-numeric
// cells; a column with zero numeric values yields a summary with nil
// fields and Count 0, which is a valid output rather than an error.
package describe

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/shanky2010/batch-visual-insights/domain/table"
)

// Quartiles holds the first and third quartile of a column.
type Quartiles struct {
	Q1 *float64 `json:"q1"`
	Q3 *float64 `json:"q3"`
}

// Summary is the descriptive-statistics snapshot for one column. All
// pointer fields are nil when the column has no numeric values.
// Skewness and kurtosis follow the population formulas without bias
// correction, so a constant column produces NaN there - callers format
// non-finite values at the display boundary, the engine never hides them.
type Summary struct {
	Mean      *float64  `json:"mean"`
	Median    *float64  `json:"median"`
	Min       *float64  `json:"min"`
	Max       *float64  `json:"max"`
	StdDev    *float64  `json:"std_dev"`
	Variance  *float64  `json:"variance"`
	Quartiles Quartiles `json:"quartiles"`
	Count     int       `json:"count"`
	Skewness  *float64  `json:"skewness"`
	Kurtosis  *float64  `json:"kurtosis"`
}

// Summarize computes the summary for one column of the matrix.
func Summarize(m table.Matrix, col int) Summary {
	return FromValues(table.ExtractNumeric(m, col).Values)
}

// FromValues computes a summary over already-extracted numeric values.
func FromValues(values []float64) Summary {
	if len(values) == 0 {
		return Summary{Count: 0}
	}

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	minV, _ := stats.Min(values)
	maxV, _ := stats.Max(values)
	// Population variance: divisor n, not n-1.
	variance, _ := stats.PopulationVariance(values)
	stdDev, _ := stats.StandardDeviationPopulation(values)

	q1, q3 := quartiles(values)
	skew := skewness(values, mean, stdDev)
	kurt := kurtosis(values, mean, stdDev)

	return Summary{
		Mean:      &mean,
		Median:    &median,
		Min:       &minV,
		Max:       &maxV,
		StdDev:    &stdDev,
		Variance:  &variance,
		Quartiles: Quartiles{Q1: &q1, Q3: &q3},
		Count:     len(values),
		Skewness:  &skew,
		Kurtosis:  &kurt,
	}
}

// quartiles takes q1/q3 at floor(n*0.25) and floor(n*0.75) of the sorted
// values. This index convention is shared with the IQR outlier detector
// and must not be swapped for an interpolating scheme.
func quartiles(values []float64) (q1, q3 float64) {
	sorted := sortedCopy(values)
	n := len(sorted)
	q1 = sorted[int(float64(n)*0.25)]
	q3 = sorted[int(float64(n)*0.75)]
	return q1, q3
}

// skewness is the population Fisher-Pearson coefficient: the mean of
// ((x-mean)/stdDev)^3 with no bias correction. A zero stdDev propagates
// NaN through the division, which is the documented degenerate output.
func skewness(values []float64, mean, stdDev float64) float64 {
	sum := 0.0
	for _, x := range values {
		z := (x - mean) / stdDev
		sum += z * z * z
	}
	return sum / float64(len(values))
}

// kurtosis is the population excess kurtosis: the mean of
// ((x-mean)/stdDev)^4 minus 3.
func kurtosis(values []float64, mean, stdDev float64) float64 {
	sum := 0.0
	for _, x := range values {
		z := (x - mean) / stdDev
		sum += z * z * z * z
	}
	return sum/float64(len(values)) - 3
}

func sortedCopy(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted
}

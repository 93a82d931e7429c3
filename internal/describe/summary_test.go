package describe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanky2010/batch-visual-insights/domain/table"
)

func TestSummarizeBasicColumn(t *testing.T) {
	m := table.Parse("a,b\n1,2\n3,4\n5,6")

	s := Summarize(m, 0)
	require.Equal(t, 3, s.Count)
	assert.InDelta(t, 3, *s.Mean, 1e-9)
	assert.InDelta(t, 3, *s.Median, 1e-9)
	assert.InDelta(t, 1, *s.Min, 1e-9)
	assert.InDelta(t, 5, *s.Max, 1e-9)
	assert.InDelta(t, math.Sqrt(8.0/3.0), *s.StdDev, 1e-9)
	assert.InDelta(t, 8.0/3.0, *s.Variance, 1e-9)
}

func TestSummarizeEmptyColumnIsNullNotError(t *testing.T) {
	m := table.Parse("a\nx\ny")

	s := Summarize(m, 0)
	assert.Equal(t, 0, s.Count)
	assert.Nil(t, s.Mean)
	assert.Nil(t, s.Median)
	assert.Nil(t, s.Min)
	assert.Nil(t, s.Max)
	assert.Nil(t, s.StdDev)
	assert.Nil(t, s.Variance)
	assert.Nil(t, s.Quartiles.Q1)
	assert.Nil(t, s.Quartiles.Q3)
	assert.Nil(t, s.Skewness)
	assert.Nil(t, s.Kurtosis)
}

func TestSummarizeSkipsNonNumericCells(t *testing.T) {
	m := table.Parse("a\n1\nx\n3\n\n5")

	s := Summarize(m, 0)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 3, *s.Mean, 1e-9)
}

func TestMedianEvenLength(t *testing.T) {
	s := FromValues([]float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, *s.Median, 1e-9)
}

func TestQuartilesUseFloorIndexConvention(t *testing.T) {
	// sorted: [1 2 3 4 5 6 7 8]; q1 at floor(8*0.25)=2 -> 3,
	// q3 at floor(8*0.75)=6 -> 7. Deliberately not interpolated.
	s := FromValues([]float64{8, 7, 6, 5, 4, 3, 2, 1})
	assert.Equal(t, 3.0, *s.Quartiles.Q1)
	assert.Equal(t, 7.0, *s.Quartiles.Q3)
}

func TestPopulationVarianceDivisor(t *testing.T) {
	// Population variance of [1,2,3,4] is 1.25 (sample would be ~1.667).
	s := FromValues([]float64{1, 2, 3, 4})
	assert.InDelta(t, 1.25, *s.Variance, 1e-9)
	assert.InDelta(t, math.Sqrt(1.25), *s.StdDev, 1e-9)
}

func TestSkewnessAndKurtosis(t *testing.T) {
	s := FromValues([]float64{1, 3, 5})
	assert.InDelta(t, 0, *s.Skewness, 1e-9)
	assert.InDelta(t, -1.5, *s.Kurtosis, 1e-9)
}

func TestConstantColumnYieldsNaNShape(t *testing.T) {
	// Zero stdDev drives the z-score division to NaN; the engine
	// surfaces it instead of suppressing.
	s := FromValues([]float64{7, 7, 7})
	assert.Equal(t, 0.0, *s.StdDev)
	assert.True(t, math.IsNaN(*s.Skewness))
	assert.True(t, math.IsNaN(*s.Kurtosis))
}

func TestSummaryOrderingProperties(t *testing.T) {
	values := []float64{12.5, -3, 0.25, 8, 8, 101, -44, 7}

	s := FromValues(values)
	assert.LessOrEqual(t, *s.Min, *s.Median)
	assert.LessOrEqual(t, *s.Median, *s.Max)
	assert.LessOrEqual(t, *s.Min, *s.Mean)
	assert.LessOrEqual(t, *s.Mean, *s.Max)
	assert.GreaterOrEqual(t, *s.Variance, 0.0)
	assert.InDelta(t, math.Sqrt(*s.Variance), *s.StdDev, 1e-9)
}

func TestProfileNormality(t *testing.T) {
	constant := Profile([]float64{5, 5, 5, 5})
	assert.True(t, constant.ZeroVariance)
	assert.False(t, constant.IsNormal)

	sparse := Profile([]float64{0, 0, 0, 1})
	assert.InDelta(t, 0.75, sparse.SparsityRatio, 1e-9)
}

package impute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanky2010/batch-visual-insights/domain/core"
	"github.com/shanky2010/batch-visual-insights/domain/table"
)

func sampleMatrix() table.Matrix {
	return table.Matrix{
		{"x", "y"},
		{"1", ""},
		{"2", "5"},
	}
}

func TestApplyMeanFillsMissingCellWithColumnMean(t *testing.T) {
	out, err := Apply(sampleMatrix(), MethodMean, "")
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, []string{"x", "y"}, out[0])
	// Column y has a single numeric value, 5, so its mean is 5.
	assert.Equal(t, []string{"1", "5"}, out[1])
	assert.Equal(t, []string{"2", "5"}, out[2])
}

func TestApplyMedianFillsMissingCellWithColumnMedian(t *testing.T) {
	m := table.Matrix{
		{"x", "y"},
		{"1", "2"},
		{"2", ""},
		{"3", "4"},
		{"4", "9"},
	}

	out, err := Apply(m, MethodMedian, "")
	require.NoError(t, err)

	// Median of [2 4 9] is 4.
	assert.Equal(t, []string{"2", "4"}, out[2])
}

func TestApplyRemoveDropsIncompleteRows(t *testing.T) {
	m := table.Matrix{
		{"a", "b"},
		{"1", "2"},
		{"3", ""},
		{"4"}, // short row counts as incomplete
		{"5", "6"},
	}

	out, err := Apply(m, MethodRemove, "")
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, []string{"1", "2"}, out[1])
	assert.Equal(t, []string{"5", "6"}, out[2])
}

func TestApplyValueFillsEveryMissingCell(t *testing.T) {
	m := table.Matrix{
		{"a", "b"},
		{"", "2"},
		{"3", ""},
	}

	out, err := Apply(m, MethodValue, "0")
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "2"}, out[1])
	assert.Equal(t, []string{"3", "0"}, out[2])
}

func TestApplyValueKeepsLiteralReplacement(t *testing.T) {
	m := table.Matrix{
		{"a"},
		{""},
	}

	out, err := Apply(m, MethodValue, "unknown")
	require.NoError(t, err)
	assert.Equal(t, "unknown", out[1][0])
}

func TestApplyMeanLeavesNonNumericColumnUntouched(t *testing.T) {
	m := table.Matrix{
		{"name", "score"},
		{"alice", "10"},
		{"", ""},
	}

	out, err := Apply(m, MethodMean, "")
	require.NoError(t, err)

	// name has no numeric values so its missing cell stays empty.
	assert.Equal(t, "", out[2][0])
	assert.Equal(t, "10", out[2][1])
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	m := sampleMatrix()

	_, err := Apply(m, MethodMean, "")
	require.NoError(t, err)

	assert.Equal(t, sampleMatrix(), m)
}

func TestApplyHeaderRowNeverTouched(t *testing.T) {
	m := table.Matrix{
		{"a", ""},
		{"1", "2"},
	}

	out, err := Apply(m, MethodValue, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", ""}, out[0])
}

func TestApplyUnknownMethod(t *testing.T) {
	_, err := Apply(sampleMatrix(), Method("drop"), "")
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
}

func TestApplyEmptyMatrix(t *testing.T) {
	out, err := Apply(table.Matrix{}, MethodMean, "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

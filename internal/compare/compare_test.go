package compare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanky2010/batch-visual-insights/domain/core"
	"github.com/shanky2010/batch-visual-insights/domain/table"
)

func scoreDataset(name string, values ...string) Dataset {
	m := table.Matrix{{"Name", "Score"}}
	for i, v := range values {
		m = append(m, []string{name + "-" + string(rune('a'+i)), v})
	}
	return Dataset{
		ID:      core.FileID(core.NewID()),
		Name:    name,
		Matrix:  m,
		Columns: []int{1},
	}
}

func TestCompareTwoFilesProducesDifferences(t *testing.T) {
	first := scoreDataset("first.csv", "40", "50", "60")
	second := scoreDataset("second.csv", "50", "60", "70")

	results := Compare(context.Background(), []Dataset{first, second})
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, "Score", result.ColumnName)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "first.csv", result.Files[0].FileName)
	assert.Equal(t, "second.csv", result.Files[1].FileName)

	require.NotNil(t, result.Differences)
	assert.InDelta(t, -10, result.Differences.Mean, 1e-9)
	assert.InDelta(t, -10, result.Differences.Median, 1e-9)
	assert.InDelta(t, -10, result.Differences.Min, 1e-9)
	assert.InDelta(t, -10, result.Differences.Max, 1e-9)
	assert.InDelta(t, 0, result.Differences.StdDev, 1e-9)
	assert.InDelta(t, 0, result.Differences.Variance, 1e-9)
}

func TestCompareColumnInOneFileOnlyIsExcluded(t *testing.T) {
	first := scoreDataset("first.csv", "1", "2")
	second := Dataset{
		ID:      core.FileID(core.NewID()),
		Name:    "second.csv",
		Matrix:  table.Matrix{{"Height"}, {"170"}, {"180"}},
		Columns: []int{0},
	}

	results := Compare(context.Background(), []Dataset{first, second})
	assert.Empty(t, results)
}

func TestCompareThreeFilesOmitsDifferences(t *testing.T) {
	datasets := []Dataset{
		scoreDataset("a.csv", "1"),
		scoreDataset("b.csv", "2"),
		scoreDataset("c.csv", "3"),
	}

	results := Compare(context.Background(), datasets)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Files, 3)
	assert.Nil(t, results[0].Differences)
}

func TestCompareFewerThanTwoDatasets(t *testing.T) {
	assert.Empty(t, Compare(context.Background(), nil))
	assert.Empty(t, Compare(context.Background(), []Dataset{scoreDataset("a.csv", "1")}))
}

func TestCompareNilStatisticsDifferenceIsZero(t *testing.T) {
	first := scoreDataset("first.csv", "10", "20")
	second := scoreDataset("second.csv") // no data rows, all stats nil

	results := Compare(context.Background(), []Dataset{first, second})
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Differences)
	assert.Equal(t, Differences{}, *results[0].Differences)
}

func TestCompareResultsSortedByColumnName(t *testing.T) {
	build := func(name string) Dataset {
		return Dataset{
			ID:      core.FileID(core.NewID()),
			Name:    name,
			Matrix:  table.Matrix{{"Zeta", "Alpha"}, {"1", "2"}},
			Columns: []int{0, 1},
		}
	}

	results := Compare(context.Background(), []Dataset{build("a.csv"), build("b.csv")})
	require.Len(t, results, 2)
	assert.Equal(t, "Alpha", results[0].ColumnName)
	assert.Equal(t, "Zeta", results[1].ColumnName)
}

func TestCompareDuplicateSelectionCountsFileOnce(t *testing.T) {
	// Selecting the same column twice in one file must not make that
	// file count as two members of the name.
	first := scoreDataset("first.csv", "1", "2")
	first.Columns = []int{1, 1}
	second := Dataset{
		ID:      core.FileID(core.NewID()),
		Name:    "second.csv",
		Matrix:  table.Matrix{{"Height"}, {"170"}, {"180"}},
		Columns: []int{0},
	}

	results := Compare(context.Background(), []Dataset{first, second})
	assert.Empty(t, results)
}

func TestCompareDuplicateSelectionStillPairsAcrossFiles(t *testing.T) {
	first := scoreDataset("first.csv", "40", "50", "60")
	first.Columns = []int{1, 1}
	second := scoreDataset("second.csv", "50", "60", "70")

	results := Compare(context.Background(), []Dataset{first, second})
	require.Len(t, results, 1)
	require.Len(t, results[0].Files, 2)
	assert.NotEqual(t, results[0].Files[0].FileID, results[0].Files[1].FileID)
	require.NotNil(t, results[0].Differences)
	assert.InDelta(t, -10, results[0].Differences.Mean, 1e-9)
}

func TestCompareResolvesColumnsByNamePerFile(t *testing.T) {
	// Score sits at different positions in the two files.
	first := Dataset{
		ID:      core.FileID(core.NewID()),
		Name:    "first.csv",
		Matrix:  table.Matrix{{"Name", "Score"}, {"a", "10"}},
		Columns: []int{1},
	}
	second := Dataset{
		ID:      core.FileID(core.NewID()),
		Name:    "second.csv",
		Matrix:  table.Matrix{{"Score", "Name"}, {"30", "b"}},
		Columns: []int{0},
	}

	results := Compare(context.Background(), []Dataset{first, second})
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Differences)
	assert.InDelta(t, -20, results[0].Differences.Mean, 1e-9)
}

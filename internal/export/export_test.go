package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shanky2010/batch-visual-insights/domain/table"
	"github.com/shanky2010/batch-visual-insights/internal/describe"
)

func ptr(v float64) *float64 { return &v }

func sampleEntry() Entry {
	return Entry{
		ColumnName: "Score",
		FileName:   "grades.csv",
		Summary: describe.Summary{
			Mean:     ptr(3),
			Median:   ptr(3),
			Min:      ptr(1),
			Max:      ptr(5),
			StdDev:   ptr(1.5),
			Variance: ptr(2.25),
			Count:    4,
		},
	}
}

func TestStatsCSVHeader(t *testing.T) {
	out := StatsCSV(nil)
	assert.Equal(t, "Column Name,File Name,Mean,Median,Min,Max,Standard Deviation,Variance,Count", out)
}

func TestStatsCSVRow(t *testing.T) {
	out := StatsCSV([]Entry{sampleEntry()})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Score,grades.csv,3,3,1,5,1.5,2.25,4", lines[1])
}

func TestStatsCSVNilStatsPrintNA(t *testing.T) {
	entry := Entry{ColumnName: "Empty", FileName: "f.csv"}

	out := StatsCSV([]Entry{entry})
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Empty,f.csv,N/A,N/A,N/A,N/A,N/A,N/A,0", lines[1])
}

func TestStatsCSVNonFiniteStatsPrintNA(t *testing.T) {
	entry := sampleEntry()
	entry.Summary.Mean = ptr(math.NaN())
	entry.Summary.Max = ptr(math.Inf(1))

	out := StatsCSV([]Entry{entry})
	fields := strings.Split(strings.Split(out, "\n")[1], ",")
	assert.Equal(t, "N/A", fields[2])
	assert.Equal(t, "N/A", fields[5])
}

func TestFormatStatTinyMagnitudesUseExponential(t *testing.T) {
	assert.Equal(t, "5.0000e-05", formatStat(ptr(0.00005)))
	assert.Equal(t, "-5.0000e-05", formatStat(ptr(-0.00005)))
	assert.Equal(t, "0.0000e+00", formatStat(ptr(0)))
}

func TestFormatStatDefaultConversion(t *testing.T) {
	assert.Equal(t, "3.14", formatStat(ptr(3.14)))
	assert.Equal(t, "0.0001", formatStat(ptr(0.0001)))
	assert.Equal(t, "1e+06", formatStat(ptr(1000000)))
}

func TestStatsCSVQuotesFieldsWithCommas(t *testing.T) {
	entry := sampleEntry()
	entry.FileName = "scores, final.csv"

	out := StatsCSV([]Entry{entry})
	assert.Contains(t, out, `"scores, final.csv"`)
}

func TestStatsXLSXRoundTrip(t *testing.T) {
	data, err := StatsXLSX([]Entry{sampleEntry()})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Column Name", rows[0][0])
	assert.Equal(t, "Score", rows[1][0])
	assert.Equal(t, "grades.csv", rows[1][1])
}

func TestMatrixCSV(t *testing.T) {
	m := table.Matrix{
		{"a", "b"},
		{"1", "2"},
	}

	assert.Equal(t, "a,b\n1,2", MatrixCSV(m))
}

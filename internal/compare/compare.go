// Package compare aligns same-named columns across files and computes
// per-statistic differences. The join key is the column name: a name
// must appear in the selected columns of at least two files to produce
// a result, and is re-resolved against each file's header row so
// positional drift between files does not matter.
package compare

import (
	"context"
	"sort"
	"sync"

	"github.com/shanky2010/batch-visual-insights/domain/core"
	"github.com/shanky2010/batch-visual-insights/domain/table"
	"github.com/shanky2010/batch-visual-insights/internal/describe"
)

// Dataset is one file's matrix plus its selected columns.
type Dataset struct {
	ID      core.FileID
	Name    string
	Matrix  table.Matrix
	Columns []int
}

// FileSummary is one file's statistics for a shared column.
type FileSummary struct {
	FileID   core.FileID      `json:"file_id"`
	FileName string           `json:"file_name"`
	Summary  describe.Summary `json:"summary"`
}

// Differences holds per-statistic arithmetic differences between
// exactly two files, first minus second. A nil statistic on either
// side contributes a difference of 0 by convention.
type Differences struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Variance float64 `json:"variance"`
}

// Result aggregates one shared column name across the files that carry it.
type Result struct {
	ColumnName  string        `json:"column_name"`
	Files       []FileSummary `json:"files"`
	Differences *Differences  `json:"differences,omitempty"`
}

// Compare groups the supplied datasets' selected columns by name and
// summarizes each shared name per file. A file contributes at most one
// member per name, so a name must be carried by two distinct files to
// produce a result; names present in only one file are excluded. Zero
// or one datasets yield an empty result, not an error. Per-file
// summaries for a column are computed concurrently; they are pure
// functions over immutable matrices.
func Compare(ctx context.Context, datasets []Dataset) []Result {
	results := []Result{}
	if len(datasets) < 2 {
		return results
	}

	// name -> files whose selection carries that header name
	type member struct {
		ds  Dataset
		col table.Column
	}
	membership := make(map[string][]member)
	var order []string
	hasFile := func(members []member, id core.FileID) bool {
		for _, mem := range members {
			if mem.ds.ID == id {
				return true
			}
		}
		return false
	}

	for _, ds := range datasets {
		headers := ds.Matrix.Headers()
		for _, colIdx := range ds.Columns {
			if colIdx < 0 || colIdx >= len(headers) {
				continue
			}
			name := headers[colIdx]
			// The column name must exist verbatim in the file's header
			// row; re-resolve rather than trusting the selection index.
			col, ok := table.ResolveColumn(ds.Matrix, name)
			if !ok {
				continue
			}
			// One member per file per name: duplicate selection entries
			// must not count a single file as two.
			if hasFile(membership[name], ds.ID) {
				continue
			}
			if len(membership[name]) == 0 {
				order = append(order, name)
			}
			membership[name] = append(membership[name], member{ds: ds, col: col})
		}
	}

	sort.Strings(order)
	for _, name := range order {
		members := membership[name]
		if len(members) < 2 {
			continue
		}

		summaries := make([]FileSummary, len(members))
		var wg sync.WaitGroup
		for i, mem := range members {
			i, mem := i, mem
			wg.Add(1)
			go func() {
				defer wg.Done()
				s := describe.Summarize(mem.ds.Matrix, mem.col.Index)
				summaries[i] = FileSummary{FileID: mem.ds.ID, FileName: mem.ds.Name, Summary: s}
			}()
		}
		wg.Wait()

		result := Result{ColumnName: name, Files: summaries}
		if len(members) == 2 {
			d := diff(summaries[0].Summary, summaries[1].Summary)
			result.Differences = &d
		}
		results = append(results, result)
	}

	return results
}

// diff computes first minus second per statistic. A nil statistic on
// either side yields a difference of 0 - the explicit convention for
// columns that are empty in one of the files.
func diff(a, b describe.Summary) Differences {
	return Differences{
		Mean:     sub(a.Mean, b.Mean),
		Median:   sub(a.Median, b.Median),
		StdDev:   sub(a.StdDev, b.StdDev),
		Min:      sub(a.Min, b.Min),
		Max:      sub(a.Max, b.Max),
		Variance: sub(a.Variance, b.Variance),
	}
}

func sub(a, b *float64) float64 {
	if a == nil || b == nil {
		return 0
	}
	return *a - *b
}

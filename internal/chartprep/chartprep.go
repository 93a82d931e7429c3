// Package chartprep projects a file's matrix and selected columns into
// chart-ready structures. All preparers share one pipeline: extract
// pairs from the data rows, drop pairs with non-finite numeric fields,
// sort descending by value where the chart is categorical, deduplicate
// by key keeping the first survivor, then cap at the row limit. Because
// sorting happens before dedup, the surviving occurrence of a repeated
// label is its highest-value instance, and because dedup happens before
// the cap, the limit counts distinct keys rather than extracted rows.
// Every preparer is a pure function of its inputs.
package chartprep

import (
	"fmt"
	"sort"

	"github.com/shanky2010/batch-visual-insights/domain/table"
)

// Default row limits per chart type.
const (
	DefaultBarLimit      = 10
	DefaultPieLimit      = 8
	DefaultScatterLimit  = 100
	DefaultTreemapLimit  = 10
	DefaultHistogramBins = 10
)

// OthersLabel is the synthetic bucket for pie slices below the share
// threshold.
const OthersLabel = "Others"

// othersThreshold is the share of the capped total below which a pie
// slice is folded into the Others bucket.
const othersThreshold = 0.01

// treemapPrefix prefixes the first-column key of every treemap node.
const treemapPrefix = "Category: "

// Dataset is one ordered series of values aligned by index to the
// chart's labels.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartData is the label-aligned shape consumed by bar, pie and
// histogram renderers.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Point is one (x, y) scatter observation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TreemapNode is one single-value category of a treemap.
type TreemapNode struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type pair struct {
	label string
	value float64
}

// extractPairs pulls (label, value) pairs from the data rows, dropping
// rows whose value cell is missing or non-finite. A missing label cell
// becomes an empty label rather than dropping the row.
func extractPairs(m table.Matrix, labelCol, valueCol int) []pair {
	var pairs []pair
	for row := 1; row < len(m); row++ {
		cell, ok := m.Cell(row, valueCol)
		if !ok {
			continue
		}
		v, ok := table.ParseFinite(cell)
		if !ok {
			continue
		}
		label, _ := m.Cell(row, labelCol)
		pairs = append(pairs, pair{label: label, value: v})
	}
	return pairs
}

// dedupeSortedDesc sorts pairs descending by value, then keeps the
// first occurrence of each label and caps the result at limit.
func dedupeSortedDesc(pairs []pair, limit int) []pair {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value > pairs[j].value
	})

	seen := make(map[string]bool, len(pairs))
	out := make([]pair, 0, limit)
	for _, p := range pairs {
		if seen[p.label] {
			continue
		}
		seen[p.label] = true
		out = append(out, p)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func toChartData(pairs []pair, seriesLabel string) ChartData {
	labels := make([]string, len(pairs))
	data := make([]float64, len(pairs))
	for i, p := range pairs {
		labels[i] = p.label
		data[i] = p.value
	}
	return ChartData{
		Labels:   labels,
		Datasets: []Dataset{{Label: seriesLabel, Data: data}},
	}
}

// Bar prepares one descending-sorted dataset of deduplicated label
// values, capped at limit (default 10).
func Bar(m table.Matrix, labelCol, valueCol, limit int) ChartData {
	if limit <= 0 {
		limit = DefaultBarLimit
	}
	pairs := dedupeSortedDesc(extractPairs(m, labelCol, valueCol), limit)
	return toChartData(pairs, seriesName(m, valueCol))
}

// Pie prepares the same extraction as Bar capped at limit (default 8),
// then folds slices contributing less than 1% of the capped total into
// a trailing "Others" slice. The fold is a partition: the output sums
// to the capped total exactly. An empty fold is omitted.
func Pie(m table.Matrix, labelCol, valueCol, limit int) ChartData {
	if limit <= 0 {
		limit = DefaultPieLimit
	}
	pairs := dedupeSortedDesc(extractPairs(m, labelCol, valueCol), limit)

	total := 0.0
	for _, p := range pairs {
		total += p.value
	}

	var kept []pair
	others := 0.0
	hasOthers := false
	for _, p := range pairs {
		if total != 0 && p.value/total < othersThreshold {
			others += p.value
			hasOthers = true
			continue
		}
		kept = append(kept, p)
	}
	if hasOthers && others != 0 {
		kept = append(kept, pair{label: OthersLabel, value: others})
	}

	return toChartData(kept, seriesName(m, valueCol))
}

// Histogram bins one numeric column into a fixed number of bins
// (default 10). Bins are half-open with the maximum value forced into
// the last bin, so bin counts always sum to the number of finite
// values. A constant column collapses into a single bin.
func Histogram(m table.Matrix, valueCol, bins int) ChartData {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	values := table.ExtractNumeric(m, valueCol).Values
	if len(values) == 0 {
		return ChartData{Labels: []string{}, Datasets: []Dataset{{Label: seriesName(m, valueCol), Data: []float64{}}}}
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	binWidth := (maxV - minV) / float64(bins)
	if binWidth == 0 {
		label := fmt.Sprintf("%.2f-%.2f", minV, maxV)
		return ChartData{
			Labels:   []string{label},
			Datasets: []Dataset{{Label: seriesName(m, valueCol), Data: []float64{float64(len(values))}}},
		}
	}

	counts := make([]float64, bins)
	for _, v := range values {
		idx := int((v - minV) / binWidth)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	labels := make([]string, bins)
	for i := 0; i < bins; i++ {
		lower := minV + float64(i)*binWidth
		upper := lower + binWidth
		labels[i] = fmt.Sprintf("%.2f-%.2f", lower, upper)
	}

	return ChartData{
		Labels:   labels,
		Datasets: []Dataset{{Label: seriesName(m, valueCol), Data: counts}},
	}
}

// Scatter extracts (x, y) pairs with both fields finite, deduplicates
// by exact pair match keeping the first occurrence, and caps at limit
// (default 100). No sorting and no binning.
func Scatter(m table.Matrix, xCol, yCol, limit int) []Point {
	if limit <= 0 {
		limit = DefaultScatterLimit
	}

	seen := make(map[Point]bool)
	points := make([]Point, 0, limit)
	for row := 1; row < len(m); row++ {
		xCell, ok := m.Cell(row, xCol)
		if !ok {
			continue
		}
		x, ok := table.ParseFinite(xCell)
		if !ok {
			continue
		}
		yCell, ok := m.Cell(row, yCol)
		if !ok {
			continue
		}
		y, ok := table.ParseFinite(yCell)
		if !ok {
			continue
		}

		p := Point{X: x, Y: y}
		if seen[p] {
			continue
		}
		seen[p] = true
		points = append(points, p)
		if len(points) >= limit {
			break
		}
	}

	return points
}

// Treemap builds single-value categories keyed by the first column's
// raw value under a fixed prefix, taking values from the selected
// column, sorted descending, deduplicated and capped (default 10).
func Treemap(m table.Matrix, valueCol, limit int) []TreemapNode {
	if limit <= 0 {
		limit = DefaultTreemapLimit
	}

	var pairs []pair
	for row := 1; row < len(m); row++ {
		cell, ok := m.Cell(row, valueCol)
		if !ok {
			continue
		}
		v, ok := table.ParseFinite(cell)
		if !ok {
			continue
		}
		key, _ := m.Cell(row, 0)
		pairs = append(pairs, pair{label: treemapPrefix + key, value: v})
	}

	pairs = dedupeSortedDesc(pairs, limit)
	nodes := make([]TreemapNode, len(pairs))
	for i, p := range pairs {
		nodes[i] = TreemapNode{Name: p.label, Value: p.value}
	}
	return nodes
}

func seriesName(m table.Matrix, col int) string {
	headers := m.Headers()
	if col >= 0 && col < len(headers) {
		return headers[col]
	}
	return fmt.Sprintf("column %d", col)
}

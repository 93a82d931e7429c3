// Package testkit generates deterministic synthetic datasets for tests.
// All output is driven by a caller-supplied seed so failures reproduce.
package testkit

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/shanky2010/batch-visual-insights/domain/table"
)

var regions = []string{"north", "south", "east", "west"}

// Generator produces synthetic matrices from a seeded RNG.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with a fixed seed for reproducibility.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// SalesMatrix generates a realistic sales table: a categorical region,
// a small positive count, a log-normal revenue and a bounded rating.
func (g *Generator) SalesMatrix(rows int) table.Matrix {
	m := table.Matrix{{"region", "units", "revenue", "rating"}}
	for i := 0; i < rows; i++ {
		units := 5 + g.rng.Intn(20)
		revenue := math.Exp(g.rng.NormFloat64()*0.5 + 3.0)
		rating := 3 + g.rng.NormFloat64()
		if rating < 1 {
			rating = 1
		}
		if rating > 5 {
			rating = 5
		}
		m = append(m, []string{
			regions[g.rng.Intn(len(regions))],
			strconv.Itoa(units),
			strconv.FormatFloat(revenue, 'f', 2, 64),
			strconv.FormatFloat(rating, 'f', 2, 64),
		})
	}
	return m
}

// WithMissing blanks every nth data cell, scanning row-major. The input
// is not modified.
func (g *Generator) WithMissing(m table.Matrix, nth int) table.Matrix {
	if nth <= 0 {
		return m.Clone()
	}
	out := m.Clone()
	count := 0
	for row := 1; row < len(out); row++ {
		for col := range out[row] {
			count++
			if count%nth == 0 {
				out[row][col] = ""
			}
		}
	}
	return out
}

// WithOutliers replaces the last count values of a column with extreme
// magnitudes far outside the generated range. The input is not modified.
func (g *Generator) WithOutliers(m table.Matrix, col, count int) table.Matrix {
	out := m.Clone()
	injected := 0
	for row := len(out) - 1; row >= 1 && injected < count; row-- {
		if col < len(out[row]) {
			out[row][col] = strconv.FormatFloat(1e6+float64(injected)*1e5, 'f', 0, 64)
			injected++
		}
	}
	return out
}

// CSV renders a generated matrix as CSV text for upload tests.
func (g *Generator) CSV(m table.Matrix) string {
	return table.Serialize(m)
}

// Package table holds the core tabular model: the raw string Matrix
// produced by the CSV parser plus the pure operations that classify,
// extract and validate its columns. Everything here is side-effect free;
// file handling and persistence live in internal/dataset and adapters.
package table

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shanky2010/batch-visual-insights/domain/core"
)

// Matrix is an ordered sequence of rows of raw string cells. Row 0 is the
// header. Rows are not guaranteed to match the header length; consumers
// must treat an out-of-range cell as an absent value.
type Matrix [][]string

// Headers returns the header row, or nil for an empty matrix.
func (m Matrix) Headers() []string {
	if len(m) == 0 {
		return nil
	}
	return m[0]
}

// DataRowCount returns the number of rows excluding the header.
func (m Matrix) DataRowCount() int {
	if len(m) <= 1 {
		return 0
	}
	return len(m) - 1
}

// Cell returns the cell at (row, col) and whether it exists. Short rows
// report missing cells rather than panicking.
func (m Matrix) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(m) || col < 0 || col >= len(m[row]) {
		return "", false
	}
	return m[row][col], true
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Column identifies one column by position and header name.
type Column struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// ColumnRef identifies one column within one file. It is the unit of
// selection for analysis and charting.
type ColumnRef struct {
	FileID core.FileID `json:"file_id"`
	Index  int         `json:"index"`
	Name   string      `json:"name"`
}

// FileStatus represents the processing state of an uploaded file
type FileStatus string

const (
	StatusProcessing FileStatus = "processing"
	StatusReady      FileStatus = "ready"
	StatusFailed     FileStatus = "failed"
)

// DataFile is one uploaded file's parsed representation plus metadata.
// The matrix is immutable once set; transforms produce a new matrix and
// the owning service bumps Version when it replaces it.
type DataFile struct {
	ID     core.FileID `json:"id"`
	UserID core.UserID `json:"user_id"`

	Name     string `json:"name"`
	FilePath string `json:"file_path,omitempty"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`

	Matrix  Matrix `json:"-"`
	Version int    `json:"version"`

	RowCount    int `json:"row_count"`
	ColumnCount int `json:"column_count"`

	Status       FileStatus `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Validation   Validation `json:"validation"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDataFile creates a DataFile in the processing state.
func NewDataFile(userID core.UserID, name string) *DataFile {
	now := time.Now()
	return &DataFile{
		ID:        core.FileID(core.NewID()),
		UserID:    userID,
		Name:      name,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy. Repositories hand out clones so a caller
// holding one file can never observe another caller's transform mid-write.
func (f *DataFile) Clone() *DataFile {
	c := *f
	c.Matrix = f.Matrix.Clone()
	if f.Validation.Issues != nil {
		c.Validation.Issues = append([]ValidationIssue(nil), f.Validation.Issues...)
	}
	return &c
}

// SetMatrix installs a parsed matrix, refreshes derived counts and bumps
// the version so cached per-column summaries invalidate.
func (f *DataFile) SetMatrix(m Matrix) {
	f.Matrix = m
	f.Version++
	f.RowCount = m.DataRowCount()
	f.ColumnCount = len(m.Headers())
	f.UpdatedAt = time.Now()
}

// Extraction is the numeric projection of one column: finite parsed
// values in row order plus, for each value, the matrix row it came from.
// Positions in Values are what outlier detectors report; Rows carries
// the explicit mapping back to the original matrix.
type Extraction struct {
	Values []float64
	Rows   []int
}

// Len returns the number of extracted values.
func (e Extraction) Len() int { return len(e.Values) }

// ExtractNumeric projects a column into its finite numeric values,
// silently skipping missing and non-numeric cells.
func ExtractNumeric(m Matrix, col int) Extraction {
	var ex Extraction
	for row := 1; row < len(m); row++ {
		cell, ok := m.Cell(row, col)
		if !ok {
			continue
		}
		v, ok := ParseFinite(cell)
		if !ok {
			continue
		}
		ex.Values = append(ex.Values, v)
		ex.Rows = append(ex.Rows, row)
	}
	return ex
}

// ParseFinite parses a cell as a finite float64. Empty cells, parse
// failures, NaN and infinities all report false.
func ParseFinite(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsMissing reports whether a cell counts as a missing value: absent,
// or empty after trimming.
func IsMissing(cell string, present bool) bool {
	return !present || strings.TrimSpace(cell) == ""
}

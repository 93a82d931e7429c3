// Package excel reads spreadsheet uploads into the core matrix model so
// xlsx files flow through the same engine as CSV text.
package excel

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shanky2010/batch-visual-insights/domain/table"
	"github.com/shanky2010/batch-visual-insights/internal/logging"
)

// Reader reads the first sheet of an xlsx workbook into a Matrix.
type Reader struct {
	log *logging.Logger
}

// NewReader creates a new spreadsheet reader
func NewReader() *Reader {
	return &Reader{log: logging.New("ExcelReader")}
}

// ReadMatrix reads the workbook's first sheet. Cell values arrive as
// strings from excelize, matching the raw-string matrix model; fields
// are trimmed the same way the CSV parser trims them.
func (r *Reader) ReadMatrix(src io.Reader) (table.Matrix, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	r.log.Debug("Sheet %q read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	matrix := make(table.Matrix, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
		}
		matrix = append(matrix, cells)
	}

	return matrix, nil
}

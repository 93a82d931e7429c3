package table

import "fmt"

// IssueSeverity grades a validation finding.
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// Issue codes
const (
	IssueEmptyFile    = "EMPTY_FILE"
	IssueNoDataRows   = "NO_DATA_ROWS"
	IssueRaggedRow    = "RAGGED_ROW"
	IssueMissingCells = "MISSING_CELLS"
)

// ValidationIssue is one finding surfaced to the consuming layer. Row is
// the matrix row index (header = 0); -1 when the issue is file-wide.
type ValidationIssue struct {
	Severity IssueSeverity `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Row      int           `json:"row"`
}

// Validation summarizes the structural health of a matrix. Issues never
// stop computation; the engine tolerates ragged rows and missing cells.
type Validation struct {
	Valid        bool              `json:"valid"`
	Issues       []ValidationIssue `json:"issues,omitempty"`
	RaggedRows   int               `json:"ragged_rows"`
	MissingCells int               `json:"missing_cells"`
}

// Validate inspects a parsed matrix for ragged rows and missing values.
// Ragged rows are errors, missing cells warnings; Valid is false only
// when an error-severity issue exists.
func Validate(m Matrix) Validation {
	v := Validation{Valid: true}

	if len(m) == 0 {
		v.Valid = false
		v.Issues = append(v.Issues, ValidationIssue{
			Severity: SeverityError,
			Code:     IssueEmptyFile,
			Message:  "file contains no rows",
			Row:      -1,
		})
		return v
	}

	if len(m) == 1 {
		v.Issues = append(v.Issues, ValidationIssue{
			Severity: SeverityWarning,
			Code:     IssueNoDataRows,
			Message:  "file contains a header but no data rows",
			Row:      -1,
		})
	}

	width := len(m.Headers())
	for row := 1; row < len(m); row++ {
		if len(m[row]) != width {
			v.RaggedRows++
			v.Valid = false
			v.Issues = append(v.Issues, ValidationIssue{
				Severity: SeverityError,
				Code:     IssueRaggedRow,
				Message:  fmt.Sprintf("row %d has %d cells, expected %d", row, len(m[row]), width),
				Row:      row,
			})
		}

		missing := 0
		for col := 0; col < width; col++ {
			cell, ok := m.Cell(row, col)
			if IsMissing(cell, ok) {
				missing++
			}
		}
		if missing > 0 {
			v.MissingCells += missing
			v.Issues = append(v.Issues, ValidationIssue{
				Severity: SeverityWarning,
				Code:     IssueMissingCells,
				Message:  fmt.Sprintf("row %d has %d missing value(s)", row, missing),
				Row:      row,
			})
		}
	}

	return v
}

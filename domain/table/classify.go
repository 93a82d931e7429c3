package table

// NumericColumns determines which columns are fully numeric. A column
// qualifies only when every data row has a value at that index which is
// non-empty and parses as a finite number - a single missing or
// non-numeric cell anywhere disqualifies the column. Columns with zero
// data rows are vacuously excluded.
func NumericColumns(m Matrix) []Column {
	columns := []Column{}
	if len(m) <= 1 {
		return columns
	}

	headers := m.Headers()
	for idx, name := range headers {
		if columnIsNumeric(m, idx) {
			columns = append(columns, Column{Index: idx, Name: name})
		}
	}

	return columns
}

func columnIsNumeric(m Matrix, col int) bool {
	for row := 1; row < len(m); row++ {
		cell, ok := m.Cell(row, col)
		if !ok {
			return false
		}
		if _, ok := ParseFinite(cell); !ok {
			return false
		}
	}
	return true
}

// ResolveColumn finds a column by its exact header name. The bool
// reports whether the name exists in the header row.
func ResolveColumn(m Matrix, name string) (Column, bool) {
	for idx, header := range m.Headers() {
		if header == name {
			return Column{Index: idx, Name: header}, true
		}
	}
	return Column{}, false
}

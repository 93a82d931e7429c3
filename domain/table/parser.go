package table

import "strings"

// Parse turns raw CSV text into a Matrix. It splits on newlines, then
// scans each line left to right with a quote toggle: a '"' not preceded
// by a backslash flips the in-quotes state, a ',' splits fields only
// outside quotes, everything else accumulates into the current field.
// Fields are trimmed of surrounding whitespace.
//
// A quoted field cannot span lines; this matches the export format the
// rest of the system produces. Malformed input (unbalanced quotes,
// ragged rows) still yields a matrix - validation is a separate step.
// Empty input yields an empty matrix.
func Parse(text string) Matrix {
	text = strings.TrimSpace(text)
	if text == "" {
		return Matrix{}
	}

	lines := strings.Split(text, "\n")
	matrix := make(Matrix, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		matrix = append(matrix, parseLine(line))
	}

	return matrix
}

// parseLine splits a single line into trimmed fields.
func parseLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i, ch := range runes {
		switch {
		case ch == '"' && (i == 0 || runes[i-1] != '\\'):
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}

// Serialize renders a matrix back to CSV text. Fields containing a
// comma or quote are wrapped in quotes with inner quotes
// backslash-escaped, so Parse(Serialize(m)) round-trips.
func Serialize(m Matrix) string {
	var sb strings.Builder
	for i, row := range m {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(encodeField(cell))
		}
	}
	return sb.String()
}

func encodeField(field string) string {
	if !strings.ContainsAny(field, ",\"") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `\"`) + `"`
}

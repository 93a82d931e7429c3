package table

import "strconv"

// FormatNumber renders a float in Go's default shortest form, the
// conversion shared by imputed cell values and exports.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

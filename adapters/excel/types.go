package excel

// RawData is a delimited or spreadsheet file as read, before coercion.
type RawData struct {
	Headers []string   // Column headers, trimmed
	Rows    [][]string // Data rows, cells as read
}

// Column returns the index of a header, or -1.
func (d *RawData) Column(name string) int {
	for i, h := range d.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns row i, column j. Short rows read as empty cells.
func (d *RawData) Cell(i, j int) string {
	if j < 0 || j >= len(d.Rows[i]) {
		return ""
	}
	return d.Rows[i][j]
}

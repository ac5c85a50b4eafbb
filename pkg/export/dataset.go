package export

// Column describes one exported field.
type Column struct {
	Key   string
	Title string
	// Width is the PDF column width in millimetres; zero shares the remaining width.
	Width float64
	// Align is a gofpdf alignment string ("L", "C", "R"); empty means left.
	Align string
}

// Dataset defines tabular export content.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

func (d Dataset) titles() []string {
	titles := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		titles[i] = col.Title
		if titles[i] == "" {
			titles[i] = col.Key
		}
	}
	return titles
}

package ir

import "github.com/roboco-io/fcmetrics/internal/table"

// TableBlock is a section laid out as a grid for text renderers.
type TableBlock struct {
	Caption string     `json:"caption,omitempty"`
	Header  []string   `json:"header"`
	Cells   [][]string `json:"cells,omitempty"`
}

// Rows returns the number of data rows.
func (t *TableBlock) Rows() int {
	return len(t.Cells)
}

// Cols returns the number of columns.
func (t *TableBlock) Cols() int {
	return len(t.Header)
}

// NewTableFromSection lays out an extracted section.
func NewTableFromSection(sec *table.Section) *TableBlock {
	t := NewTableFromRecords(sec.Name, sec.Records)
	if len(t.Header) == 0 {
		t.Header = append([]string(nil), sec.Header...)
	}
	return t
}

// NewTableFromRecords lays out records under the header of the first one.
// Values of later records are looked up by that header.
func NewTableFromRecords(caption string, records []table.Record) *TableBlock {
	t := &TableBlock{Caption: caption}
	if len(records) == 0 {
		return t
	}

	t.Header = records[0].Fields()
	t.Cells = make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(t.Header))
		for j, f := range t.Header {
			row[j], _ = r.Get(f)
		}
		t.Cells = append(t.Cells, row)
	}
	return t
}

package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/pagerewrite/internal/doctree"
)

// csvBatchSize is the number of data rows per rendered section.
const csvBatchSize = 20

// CSVParser handles CSV files. The header row names the lead; each batch of
// data rows becomes a section with one paragraph per row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := newSectionBuilder(stripExt(filename))
	if len(records) == 0 {
		return b.finish(), nil
	}

	headers := records[0]
	b.paragraph("Columns: " + strings.Join(headers, ", "))

	dataRows := records[1:]
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))
		// 1-indexed, header is row 1.
		b.heading(2, fmt.Sprintf("Rows %d-%d", i+2, end+1))
		for _, row := range dataRows[i:end] {
			b.paragraph(formatRow(headers, row))
		}
	}

	return b.finish(), nil
}

func formatRow(headers, row []string) string {
	cells := make([]string, len(row))
	for j, cell := range row {
		if j < len(headers) {
			cells[j] = headers[j] + ": " + cell
		} else {
			cells[j] = cell
		}
	}
	return strings.Join(cells, ", ")
}

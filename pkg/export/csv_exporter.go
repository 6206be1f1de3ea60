package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is an ordered table: one header row followed by data rows whose
// cells align positionally with the headers.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// CSVExporter renders a Dataset as CSV bytes.
type CSVExporter struct{}

// NewCSVExporter constructs a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes the header row and every data row. Short rows are padded,
// long rows truncated, so the output always stays rectangular.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		copy(record, row)
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

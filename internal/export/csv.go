package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVOptions configures CSV summary output
type CSVOptions struct {
	Delimiter     rune
	UseCRLF       bool
	IncludeHeader bool
	DateFormat    string
}

// DefaultCSVOptions returns comma separated output with a header row
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:     ',',
		IncludeHeader: true,
		DateFormat:    "2006-01-02",
	}
}

// CSVRenderer writes summaries as Step,Field,Value rows
type CSVRenderer struct {
	options CSVOptions
}

// NewCSVRenderer creates a CSV renderer
func NewCSVRenderer(options CSVOptions) *CSVRenderer {
	return &CSVRenderer{options: options}
}

// Render encodes s as CSV
func (r *CSVRenderer) Render(s Summary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = r.options.Delimiter
	w.UseCRLF = r.options.UseCRLF

	if r.options.IncludeHeader {
		if err := w.Write([]string{"Step", "Field", "Value"}); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, sec := range s.Sections {
		for _, row := range sec.Rows {
			record := []string{sec.Title, row.Label, formatValue(row.Value, r.options.DateFormat)}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

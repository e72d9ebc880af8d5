package export

import (
	"fmt"
	"time"

	"buyer-portal/buyer-portal-backend/internal/onboarding"
)

// Supported summary formats
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Exporter renders onboarding summaries in the supported formats
type Exporter struct {
	pdf   *PDFRenderer
	excel *ExcelRenderer
	csv   *CSVRenderer
	now   func() time.Time
}

// NewExporter creates an exporter with default layout options
func NewExporter() *Exporter {
	return &Exporter{
		pdf:   NewPDFRenderer(DefaultPDFOptions()),
		excel: NewExcelRenderer(DefaultExcelOptions()),
		csv:   NewCSVRenderer(DefaultCSVOptions()),
		now:   time.Now,
	}
}

// ContentType returns the MIME type and file extension of format
func (e *Exporter) ContentType(format string) (string, string, bool) {
	switch format {
	case FormatPDF:
		return "application/pdf", "pdf", true
	case FormatXLSX, "excel":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", true
	case FormatCSV:
		return "text/csv", "csv", true
	default:
		return "", "", false
	}
}

// Render builds the summary of view and encodes it as format
func (e *Exporter) Render(format string, view onboarding.View) ([]byte, error) {
	summary := BuildSummary(view, e.now())
	switch format {
	case FormatPDF:
		return e.pdf.Render(summary)
	case FormatXLSX, "excel":
		return e.excel.Render(summary)
	case FormatCSV:
		return e.csv.Render(summary)
	default:
		return nil, fmt.Errorf("unsupported summary format: %s", format)
	}
}

package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions configures the summary document
type PDFOptions struct {
	PageSize       string     `json:"page_size"`
	Title          string     `json:"title"`
	Author         string     `json:"author,omitempty"`
	DateFormat     string     `json:"date_format"`
	HeaderColor    PDFColor   `json:"header_color"`
	AlternateColor PDFColor   `json:"alternate_color"`
	FontFamily     string     `json:"font_family"`
	FontSize       float64    `json:"font_size"`
	TitleFontSize  float64    `json:"title_font_size"`
	LabelWidth     float64    `json:"label_width"`
	Margins        PDFMargins `json:"margins"`
}

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// PDFMargins represents page margins
type PDFMargins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		Title:          "Buyer Onboarding Summary",
		Author:         "Buyer Portal",
		DateFormat:     "2 Jan 2006",
		HeaderColor:    PDFColor{R: 31, G: 56, B: 100},
		AlternateColor: PDFColor{R: 242, G: 242, B: 242},
		FontFamily:     "Arial",
		FontSize:       9,
		TitleFontSize:  16,
		LabelWidth:     75,
		Margins:        PDFMargins{Left: 15, Right: 15, Top: 20, Bottom: 20},
	}
}

// PDFRenderer lays a Summary out as label/value tables, one per step
type PDFRenderer struct {
	options PDFOptions
}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer(options PDFOptions) *PDFRenderer {
	return &PDFRenderer{options: options}
}

// Render produces the PDF bytes for s
func (r *PDFRenderer) Render(s Summary) ([]byte, error) {
	o := r.options
	pdf := gofpdf.New("P", "mm", o.PageSize, "")
	pdf.SetMargins(o.Margins.Left, o.Margins.Top, o.Margins.Right)
	pdf.SetAutoPageBreak(true, o.Margins.Bottom)
	pdf.SetTitle(o.Title, true)
	pdf.SetAuthor(o.Author, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(o.FontFamily, "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont(o.FontFamily, "B", o.TitleFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, o.Title, "", 1, "C", false, 0, "")

	if s.Organisation != "" {
		pdf.SetFont(o.FontFamily, "", o.FontSize+3)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 8, tr(s.Organisation), "", 1, "C", false, 0, "")
	}

	status := "In progress"
	if s.Completed {
		status = "Completed"
	}
	pdf.SetFont(o.FontFamily, "", o.FontSize)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s    Generated: %s", status, s.GeneratedAt.Format(o.DateFormat)), "", 1, "R", false, 0, "")

	pageWidth, pageHeight := pdf.GetPageSize()
	valueWidth := pageWidth - o.Margins.Left - o.Margins.Right - o.LabelWidth

	for _, sec := range s.Sections {
		pdf.Ln(6)
		if pdf.GetY()+20 > pageHeight-o.Margins.Bottom {
			pdf.AddPage()
		}
		pdf.SetFont(o.FontFamily, "B", o.FontSize+2)
		pdf.SetFillColor(o.HeaderColor.R, o.HeaderColor.G, o.HeaderColor.B)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(0, 8, tr(sec.Title), "1", 1, "L", true, 0, "")

		pdf.SetTextColor(0, 0, 0)
		for i, row := range sec.Rows {
			if i%2 == 1 {
				pdf.SetFillColor(o.AlternateColor.R, o.AlternateColor.G, o.AlternateColor.B)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
			pdf.SetFont(o.FontFamily, "B", o.FontSize)
			pdf.CellFormat(o.LabelWidth, 6, tr(row.Label), "1", 0, "L", true, 0, "")
			pdf.SetFont(o.FontFamily, "", o.FontSize)
			pdf.CellFormat(valueWidth, 6, tr(truncate(formatValue(row.Value, o.DateFormat), 90)), "1", 1, "L", true, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// formatValue formats a value for display
func formatValue(val interface{}, dateFormat string) string {
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(dateFormat)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

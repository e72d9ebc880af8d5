package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExcelOptions configures the summary workbook
type ExcelOptions struct {
	SheetName       string            `json:"sheet_name"`
	FreezeHeader    bool              `json:"freeze_header"`
	AutoFilter      bool              `json:"auto_filter"`
	NumberFormat    string            `json:"number_format"`
	HeaderStyle     *ExcelStyleConfig `json:"header_style,omitempty"`
	SectionStyle    *ExcelStyleConfig `json:"section_style,omitempty"`
	LabelColumnWide float64           `json:"label_column_wide"`
	ValueColumnWide float64           `json:"value_column_wide"`
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool   `json:"font_bold"`
	FontSize  int    `json:"font_size"`
	FontColor string `json:"font_color"`
	FillColor string `json:"fill_color"`
	Border    bool   `json:"border"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:    "Summary",
		FreezeHeader: true,
		AutoFilter:   true,
		NumberFormat: "#,##0.##",
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FillColor: "1F3864",
			FontColor: "FFFFFF",
			Border:    true,
		},
		SectionStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FillColor: "D9E1F2",
		},
		LabelColumnWide: 45,
		ValueColumnWide: 60,
	}
}

// ExcelRenderer writes a Summary as a single Step / Field / Value sheet
type ExcelRenderer struct {
	options ExcelOptions
}

// NewExcelRenderer creates an Excel renderer
func NewExcelRenderer(options ExcelOptions) *ExcelRenderer {
	return &ExcelRenderer{options: options}
}

// Render produces the XLSX bytes for s
func (r *ExcelRenderer) Render(s Summary) ([]byte, error) {
	o := r.options
	file := excelize.NewFile()
	defer file.Close()

	sheet := o.SheetName
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := r.createStyle(file, o.HeaderStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	sectionStyle, err := r.createStyle(file, o.SectionStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to create section style: %w", err)
	}
	numberStyle, err := file.NewStyle(&excelize.Style{CustomNumFmt: &o.NumberFormat})
	if err != nil {
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}
	dateStyle, err := file.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, fmt.Errorf("failed to create date style: %w", err)
	}

	for i, h := range []string{"Step", "Field", "Value"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	if headerStyle > 0 {
		file.SetCellStyle(sheet, "A1", "C1", headerStyle)
	}

	row := 2
	for _, sec := range s.Sections {
		file.SetCellValue(sheet, fmt.Sprintf("A%d", row), sec.Title)
		if sectionStyle > 0 {
			file.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), sectionStyle)
		}
		row++
		for _, entry := range sec.Rows {
			file.SetCellValue(sheet, fmt.Sprintf("A%d", row), sec.Title)
			file.SetCellValue(sheet, fmt.Sprintf("B%d", row), entry.Label)
			cell := fmt.Sprintf("C%d", row)
			switch v := entry.Value.(type) {
			case time.Time:
				if !v.IsZero() {
					file.SetCellValue(sheet, cell, v)
					file.SetCellStyle(sheet, cell, cell, dateStyle)
				}
			case float64:
				file.SetCellValue(sheet, cell, v)
				file.SetCellStyle(sheet, cell, cell, numberStyle)
			case bool:
				file.SetCellValue(sheet, cell, formatValue(v, ""))
			default:
				file.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	if o.FreezeHeader {
		file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	if o.AutoFilter {
		file.AutoFilter(sheet, fmt.Sprintf("A1:C%d", row-1), nil)
	}
	file.SetColWidth(sheet, "A", "A", 34)
	file.SetColWidth(sheet, "B", "B", o.LabelColumnWide)
	file.SetColWidth(sheet, "C", "C", o.ValueColumnWide)

	file.SetDocProps(&excelize.DocProperties{
		Title:   "Buyer Onboarding Summary",
		Subject: s.Organisation,
		Created: s.GeneratedAt.UTC().Format(time.RFC3339),
	})

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// createStyle creates an Excel style from config; nil config means no style
func (r *ExcelRenderer) createStyle(file *excelize.File, config *ExcelStyleConfig) (int, error) {
	if config == nil {
		return 0, nil
	}
	style := &excelize.Style{
		Font: &excelize.Font{
			Bold: config.FontBold,
			Size: float64(config.FontSize),
		},
	}
	if config.FontColor != "" {
		style.Font.Color = config.FontColor
	}
	if config.FillColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{config.FillColor},
		}
	}
	if config.Border {
		style.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}
	return file.NewStyle(style)
}

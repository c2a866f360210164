package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/util"
)

// Default report names
const (
	DefaultSheetName = "Training Report"
	DefaultFilename  = "Sales_Training_Report.xlsx"
)

var (
	adminHeaders = []string{
		"Code", "Salesman Name", "Showroom", "Counter",
		"Total Sales", "Cross Sales", "Cross Sale %", "Training Status",
	}
	// restricted viewers get ranks in place of amounts
	restrictedHeaders = []string{
		"Code", "Salesman Name", "Showroom", "Counter",
		"Sale Rank", "Cross Sale Rank", "Cross Sale %", "Training Status",
	}
	columnWidths = []float64{10, 28, 18, 16, 16, 16, 14, 18}
)

// Exporter writes the training report workbook
type Exporter struct {
	sheetName string
}

// NewExporter creates an exporter for sheetName
func NewExporter(sheetName string) *Exporter {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Exporter{sheetName: sheetName}
}

// ExportOptions controls one export
type ExportOptions struct {
	Staff      []model.StaffSummary // already filtered and sorted
	Restricted bool
	Progress   func(ProgressEvent)
}

// Export builds a single-sheet workbook, one row per staff member in the given order.
// The caller owns the returned file and must Close it.
func (e *Exporter) Export(opts ExportOptions) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := e.fill(f, opts); err != nil {
		_ = f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

func (e *Exporter) fill(f *excelize.File, opts ExportOptions) error {
	reportProgress(opts.Progress, 0, StageStart)

	if err := f.SetSheetName(f.GetSheetName(0), e.sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := adminHeaders
	if opts.Restricted {
		headers = restrictedHeaders
	}
	if err := e.writeHeader(f, headers); err != nil {
		return err
	}

	total := len(opts.Staff)
	for i, s := range opts.Staff {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := staffRow(s, opts.Restricted)
		if err := f.SetSheetRow(e.sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
		if total > 0 && (i+1)%100 == 0 {
			reportProgress(opts.Progress, 5+90*(i+1)/total, StageRows)
		}
	}

	reportProgress(opts.Progress, 100, StageDone)
	return nil
}

func (e *Exporter) writeHeader(f *excelize.File, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E5E7EB"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(e.sheetName, "A1", &row); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(e.sheetName, "A1", last, style); err != nil {
		return err
	}

	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(e.sheetName, col, col, w); err != nil {
			return err
		}
	}

	return f.SetPanes(e.sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func staffRow(s model.StaffSummary, restricted bool) []interface{} {
	pct := util.FormatPercent(s.CrossSalePercentage)
	if restricted {
		return []interface{}{
			s.DisplayCode, s.Name, s.Showroom, s.Counter,
			s.SaleRank, s.CrossSaleRank, pct, s.TrainingStatus,
		}
	}
	return []interface{}{
		s.DisplayCode, s.Name, s.Showroom, s.Counter,
		s.TotalSales, s.CrossSales, pct, s.TrainingStatus,
	}
}

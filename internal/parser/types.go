package parser

import (
	"errors"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

var (
	// ErrEmptyWorkbook is returned when no sheet has a header row
	ErrEmptyWorkbook = errors.New("workbook has no data")
	// ErrUnsupportedFormat is returned for extensions other than .xlsx/.xls
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

// Format is the spreadsheet container format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// FieldMapping records which column fed a canonical field
type FieldMapping struct {
	ColumnIndex int    `json:"columnIndex"` // zero-based
	ColumnName  string `json:"columnName"`  // header text as written
	Field       string `json:"field"`       // canonical key
}

// ParseResult is the outcome of parsing one workbook
type ParseResult struct {
	SheetName   string                 `json:"sheetName"`
	Format      Format                 `json:"format"`
	Headers     []string               `json:"headers"`
	Mappings    []FieldMapping         `json:"mappings"`
	Missing     []string               `json:"missing,omitempty"` // canonical fields without a column
	TotalRows   int                    `json:"totalRows"`
	SkippedRows int                    `json:"skippedRows"`
	Records     []model.RawSalesRecord `json:"-"`
}

package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

// Parser reads sales sheets into raw records
type Parser struct {
	mapper *FieldMapper
}

// NewParser creates a parser
func NewParser() *Parser {
	return &Parser{mapper: NewFieldMapper()}
}

// ParseFile opens path and parses its first sheet.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return p.Parse(f, path)
}

// Parse reads the first sheet of an xlsx/xls upload into raw sales records.
// The first row is the header; blank rows are skipped.
func (p *Parser) Parse(r io.Reader, filename string) (*ParseResult, error) {
	sheet, err := readFirstSheet(r, filename)
	if err != nil {
		return nil, err
	}

	headers := make([]string, len(sheet.rows[0]))
	for i, h := range sheet.rows[0] {
		headers[i] = NormalizeColumnName(h)
	}

	indexes, mappings := p.mapper.Map(headers)

	result := &ParseResult{
		SheetName: sheet.name,
		Format:    sheet.format,
		Headers:   headers,
		Mappings:  mappings,
		Records:   make([]model.RawSalesRecord, 0, len(sheet.rows)-1),
	}
	for _, field := range model.CanonicalKeys {
		if _, ok := indexes[field]; !ok {
			result.Missing = append(result.Missing, field)
		}
	}

	for _, row := range sheet.rows[1:] {
		result.TotalRows++
		if IsBlankRow(row) {
			result.SkippedRows++
			continue
		}
		result.Records = append(result.Records, buildRecord(headers, indexes, row))
	}

	return result, nil
}

func buildRecord(headers []string, indexes map[string]int, row []string) model.RawSalesRecord {
	get := func(field string) string {
		idx, ok := indexes[field]
		if !ok {
			return ""
		}
		return CellValue(row, idx)
	}
	orDefault := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	rec := model.RawSalesRecord{
		SalesmanCode:   orDefault(NormalizeCode(get(model.KeySalesmanCode)), model.DefaultSalesmanCode),
		SalesmanName:   get(model.KeySalesmanName),
		ShowRoom:       get(model.KeyShowRoom),
		BillMo:         get(model.KeyBillMo),
		Counter:        orDefault(get(model.KeyCounter), model.DefaultCounter),
		TotalSales:     model.ToNumber(get(model.KeyTotalSales)),
		CrossSales:     model.ToNumber(get(model.KeyCrossSales)),
		TrainingStatus: orDefault(get(model.KeyTrainingStatus), model.TrainingNotAvailable),
	}

	for i, h := range headers {
		if h == "" {
			continue
		}
		v := CellValue(row, i)
		if v == "" {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]any)
		}
		if _, dup := rec.Extra[h]; dup {
			continue
		}
		rec.Extra[h] = ConvertCell(v)
	}
	for _, k := range model.CanonicalKeys {
		delete(rec.Extra, k)
	}
	return rec
}

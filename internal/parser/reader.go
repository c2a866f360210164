package parser

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat sniffs the container signature, falling back to the file extension.
func DetectFormat(data []byte, filename string) (Format, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS, nil
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(filename))
}

// sheetRows is the first worksheet of a workbook as raw text cells.
type sheetRows struct {
	name   string
	format Format
	rows   [][]string
}

// readFirstSheet reads only the first worksheet; later sheets are ignored.
func readFirstSheet(r io.Reader, filename string) (*sheetRows, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyWorkbook
	}

	format, err := DetectFormat(data, filename)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLS:
		return readXLS(data)
	default:
		return readXLSX(data)
	}
}

func readXLSX(data []byte) (*sheetRows, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrEmptyWorkbook
	}

	// raw values keep amounts free of display formatting such as thousands separators
	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return &sheetRows{name: sheetName, format: FormatXLSX, rows: rows}, nil
}

func readXLS(data []byte) (*sheetRows, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if workbook.NumSheets() == 0 {
		return nil, ErrEmptyWorkbook
	}

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptyWorkbook
	}

	var rows [][]string
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		// LastCol is one past the last used column, or 0 when the writer left out
		// the ROW record; fall back to the widest row seen so far.
		n := max(row.LastCol(), width)
		width = n
		cells := make([]string, 0, n)
		for j := 0; j < n; j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	for len(rows) > 0 && IsBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return &sheetRows{name: sheet.Name, format: FormatXLS, rows: rows}, nil
}

// xlsRow returns nil for rows with no cells. WorkSheet.Row dereferences the row
// without checking that it exists.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

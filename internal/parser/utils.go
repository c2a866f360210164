package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	floatCodeRe  = regexp.MustCompile(`^(-?\d+)\.0+$`)
)

// NormalizeColumnName trims and collapses whitespace in a header cell
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\t", " ")
	return whitespaceRe.ReplaceAllString(name, " ")
}

// FoldColumnName lowercases and removes all whitespace ("Show Room" == "showroom").
func FoldColumnName(name string) string {
	return strings.ToLower(whitespaceRe.ReplaceAllString(name, ""))
}

// CellValue returns the trimmed cell at idx, or "" when out of range
func CellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// IsBlankRow reports whether every cell is empty
func IsBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ConvertCell turns numeric-looking text into float64, like a spreadsheet reader would.
func ConvertCell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

// NormalizeCode strips the ".0" suffix a numeric code cell picks up. The digits are
// kept as written, so "007" and "7" stay distinct codes.
func NormalizeCode(s string) string {
	s = strings.TrimSpace(s)
	if m := floatCodeRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

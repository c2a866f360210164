package util

import (
	"math"
	"strconv"
	"strings"
)

// FormatCurrency formats value with en-IN digit grouping and no decimals:
// 1234567.4 -> "12,34,567".
func FormatCurrency(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}
	rounded := math.Round(value)
	neg := rounded < 0
	digits := strconv.FormatFloat(math.Abs(rounded), 'f', 0, 64)

	sign := ""
	if neg {
		sign = "-"
	}
	if len(digits) <= 3 {
		return sign + digits
	}
	// last three digits form one group, the rest are grouped in pairs
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	groups := make([]string, 0, len(head)/2+2)
	first := len(head) % 2
	if first > 0 {
		groups = append(groups, head[:first])
	}
	for i := first; i < len(head); i += 2 {
		groups = append(groups, head[i:i+2])
	}
	groups = append(groups, tail)
	return sign + strings.Join(groups, ",")
}

// FormatPercent prints a percentage already scaled to 0-100, shortest form: 12.3 -> "12.3%".
func FormatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "%"
}

package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{123456, "1,23,456"},
		{1234567.4, "12,34,567"},
		{12345678, "1,23,45,678"},
		{999.5, "1,000"},
		{-123456, "-1,23,456"},
		{-1234, "-1,234"},
		{-12, "-12"},
		{math.NaN(), "0"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCurrency(tc.in), "input %v", tc.in)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.3%", FormatPercent(12.3))
	assert.Equal(t, "10%", FormatPercent(10))
	assert.Equal(t, "0%", FormatPercent(0))
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawSalesRecord_UnmarshalLegacyDocument(t *testing.T) {
	t.Parallel()

	doc := `{
		"SalesmanCode": 1023,
		"SalesmanName": "Anita",
		"ShowRoom": "T Nagar",
		"BillMo": "Apr-24",
		"Counter": "Gold",
		"TotalSales": "125000",
		"CrossSales": "n/a",
		"TrainingStatus": "Completed",
		"Bangle": 4000,
		"Chain": "1,500"
	}`

	var r RawSalesRecord
	require.NoError(t, json.Unmarshal([]byte(doc), &r))

	assert.Equal(t, "1023", r.SalesmanCode)
	assert.Equal(t, "Anita", r.SalesmanName)
	assert.Equal(t, 125000.0, r.TotalSales)
	assert.Equal(t, 0.0, r.CrossSales, "malformed amount decodes as zero")
	assert.Equal(t, 4000.0, r.Extra["Bangle"])
	assert.Equal(t, "1,500", r.Extra["Chain"])
	assert.NotContains(t, r.Extra, KeySalesmanCode)
}

func TestRawSalesRecord_MarshalCanonicalKeysWin(t *testing.T) {
	t.Parallel()

	r := RawSalesRecord{
		SalesmanCode: "7",
		TotalSales:   10,
		Extra: map[string]any{
			"TotalSales": "stale",
			"Ring":       3.0,
		},
	}
	b, err := json.Marshal(r)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, 10.0, back["TotalSales"])
	assert.Equal(t, 3.0, back["Ring"])
	assert.Equal(t, "7", back["SalesmanCode"])
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{nil, 0, true},
		{"", 0, true},
		{" 12,345.5 ", 12345.5, true},
		{"abc", 0, false},
		{"NaN", 0, false},
		{json.Number("42"), 42, true},
		{float64(3.5), 3.5, true},
		{true, 1, true},
		{[]string{"x"}, 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParseNumber(%v) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestStringify_IntegralFloat(t *testing.T) {
	t.Parallel()

	if got := Stringify(1023.0); got != "1023" {
		t.Fatalf("got %q", got)
	}
	if got := Stringify(10.25); got != "10.25" {
		t.Fatalf("got %q", got)
	}
	if got := Stringify(nil); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestFilterState_Normalize(t *testing.T) {
	t.Parallel()

	f := FilterState{Counter: "Gold"}.Normalize()
	assert.Equal(t, AllShowrooms, f.Showroom)
	assert.Equal(t, AllMonths, f.BillMonth)
	assert.Equal(t, "Gold", f.Counter)
}

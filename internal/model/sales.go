package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Canonical column keys of a sales record
const (
	KeySalesmanCode   = "SalesmanCode"
	KeySalesmanName   = "SalesmanName"
	KeyShowRoom       = "ShowRoom"
	KeyBillMo         = "BillMo"
	KeyCounter        = "Counter"
	KeyTotalSales     = "TotalSales"
	KeyCrossSales     = "CrossSales"
	KeyTrainingStatus = "TrainingStatus"
)

// CanonicalKeys lists the known record keys in sheet order.
var CanonicalKeys = []string{
	KeySalesmanCode,
	KeySalesmanName,
	KeyShowRoom,
	KeyBillMo,
	KeyCounter,
	KeyTotalSales,
	KeyCrossSales,
	KeyTrainingStatus,
}

// Defaults applied when a column is missing from the uploaded sheet
const (
	DefaultSalesmanCode = "0"
	DefaultCounter      = "Others"
)

// RawSalesRecord is one data row of the uploaded sheet
//
// Extra carries every other column of the source row (product categories such as
// Bangle or Chain). The JSON form is a flat object so the persisted document keeps the
// shape of the uploaded sheet.
type RawSalesRecord struct {
	SalesmanCode   string
	SalesmanName   string
	ShowRoom       string
	BillMo         string
	Counter        string
	TotalSales     float64
	CrossSales     float64
	TrainingStatus string
	Extra          map[string]any
}

// MarshalJSON writes extras first so canonical keys always win.
func (r RawSalesRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+len(CanonicalKeys))
	for k, v := range r.Extra {
		out[k] = v
	}
	out[KeySalesmanCode] = r.SalesmanCode
	out[KeySalesmanName] = r.SalesmanName
	out[KeyShowRoom] = r.ShowRoom
	out[KeyBillMo] = r.BillMo
	out[KeyCounter] = r.Counter
	out[KeyTotalSales] = r.TotalSales
	out[KeyCrossSales] = r.CrossSales
	out[KeyTrainingStatus] = r.TrainingStatus
	return json.Marshal(out)
}

// UnmarshalJSON accepts documents written by older uploads where codes were numbers
// and amounts could be strings; values that are not numeric decode as zero.
func (r *RawSalesRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode sales record: %w", err)
	}

	*r = RawSalesRecord{
		SalesmanCode:   Stringify(raw[KeySalesmanCode]),
		SalesmanName:   Stringify(raw[KeySalesmanName]),
		ShowRoom:       Stringify(raw[KeyShowRoom]),
		BillMo:         Stringify(raw[KeyBillMo]),
		Counter:        Stringify(raw[KeyCounter]),
		TotalSales:     ToNumber(raw[KeyTotalSales]),
		CrossSales:     ToNumber(raw[KeyCrossSales]),
		TrainingStatus: Stringify(raw[KeyTrainingStatus]),
	}

	for _, k := range CanonicalKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		r.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			if n, ok := v.(json.Number); ok {
				if f, err := n.Float64(); err == nil {
					r.Extra[k] = f
					continue
				}
			}
			r.Extra[k] = v
		}
	}
	return nil
}

// Stringify renders a cell value as text; whole floats print without decimals
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return formatNumber(f)
		}
		return t.String()
	case float64:
		return formatNumber(t)
	case float32:
		return formatNumber(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToNumber converts leniently, returning 0 for non-numbers
func ToNumber(v any) float64 {
	f, ok := ParseNumber(v)
	if !ok {
		return 0
	}
	return f
}

// ParseNumber parses a number; ok is false when v is not numeric
//
// Empty strings and nil count as zero, matching how spreadsheet blanks are summed.
// Thousands separators are accepted on purpose: "1,200" reads as 1200 rather than
// being rejected as malformed.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, true
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		s = strings.ReplaceAll(s, ",", "")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

package calculator

import (
	"errors"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

// ErrUnknownStatus is returned for statuses outside TrainingStatusOptions
var ErrUnknownStatus = errors.New("unknown training status")

// DefaultProductCategories are the product columns charted
var DefaultProductCategories = []string{
	"Bangle", "Chain", "Earrings", "Ethnic&Vint", "Kids", "Necklace", "Oriana", "Ring", "Others",
}

// DefaultTopProducts caps the product chart
const DefaultTopProducts = 8

// Result is everything the dashboard needs for one filter
type Result struct {
	Staff   []model.StaffSummary   `json:"staffData"`
	Metrics model.DashboardMetrics `json:"metrics"`
}

// Calculator aggregates raw records
type Calculator struct {
	categories []string
	topN       int
}

// NewCalculator creates a calculator with the default categories
func NewCalculator() *Calculator {
	return &Calculator{
		categories: DefaultProductCategories,
		topN:       DefaultTopProducts,
	}
}

func isInvalidCode(code string) bool {
	return code == "" || code == "0" || code == "undefined" || code == "null"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// StaffID is the code when valid, else name-showroom-counter
func StaffID(r model.RawSalesRecord) string {
	if isInvalidCode(r.SalesmanCode) {
		return orUnknown(r.SalesmanName) + "-" + orUnknown(r.ShowRoom) + "-" + orUnknown(r.Counter)
	}
	return r.SalesmanCode
}

// DisplayCode is the code shown in tables. Every code that StaffID treats as missing,
// "null" included, shows as N/A.
func DisplayCode(r model.RawSalesRecord) string {
	if isInvalidCode(r.SalesmanCode) {
		return "N/A"
	}
	return r.SalesmanCode
}

// Matches reports whether the record passes every filter; sentinels match all.
func Matches(r model.RawSalesRecord, f model.FilterState) bool {
	f = f.Normalize()
	if f.Showroom != model.AllShowrooms && r.ShowRoom != f.Showroom {
		return false
	}
	if f.BillMonth != model.AllMonths && r.BillMo != f.BillMonth {
		return false
	}
	if f.Counter != model.AllCounters && r.Counter != f.Counter {
		return false
	}
	return true
}

// Filter keeps matching records in order
func Filter(records []model.RawSalesRecord, f model.FilterState) []model.RawSalesRecord {
	out := make([]model.RawSalesRecord, 0, len(records))
	for _, r := range records {
		if Matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

// Round1 rounds to one decimal the way a spreadsheet shows it: the exact binary value
// is rounded half away from zero, so 0.15 (stored as 0.1499...) becomes 0.1 and an
// exact 0.25 becomes 0.3.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	x := new(big.Float).SetPrec(128).SetFloat64(math.Abs(v))
	x.Mul(x, big.NewFloat(10))
	n, _ := x.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(x, new(big.Float).SetInt(n))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		n.Add(n, big.NewInt(1))
	}
	r, _ := new(big.Float).SetInt(n).Float64()
	r /= 10
	if v < 0 {
		return -r
	}
	return r
}

// Percentage returns part/whole*100 rounded to one decimal, or 0 when whole <= 0.
func Percentage(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return Round1(part / whole * 100)
}

// Process filters, groups by staff, sums, then ranks
func (c *Calculator) Process(records []model.RawSalesRecord, filters model.FilterState) Result {
	filtered := Filter(records, filters)

	staff := Aggregate(filtered)
	AssignRanks(staff)

	var totalSales, totalCross float64
	for _, r := range filtered {
		totalSales += r.TotalSales
		totalCross += r.CrossSales
	}

	return Result{
		Staff: staff,
		Metrics: model.DashboardMetrics{
			TotalSales:          totalSales,
			TotalCrossSales:     totalCross,
			CrossSalePercentage: Percentage(totalCross, totalSales),
			TopProducts:         c.TopProducts(filtered),
		},
	}
}

// Aggregate groups records by StaffID in first-seen order.
//
// The first record fixes identity fields; later records only add amounts and may
// replace the training status when they carry a real one.
func Aggregate(records []model.RawSalesRecord) []model.StaffSummary {
	index := make(map[string]int)
	staff := make([]model.StaffSummary, 0)

	for _, r := range records {
		id := StaffID(r)
		i, ok := index[id]
		if !ok {
			status := r.TrainingStatus
			if status == "" {
				status = model.TrainingNotAvailable
			}
			staff = append(staff, model.StaffSummary{
				ID:             id,
				DisplayCode:    DisplayCode(r),
				Name:           r.SalesmanName,
				Counter:        r.Counter,
				Showroom:       r.ShowRoom,
				TrainingStatus: status,
			})
			i = len(staff) - 1
			index[id] = i
		}

		s := &staff[i]
		s.TotalSales += r.TotalSales
		s.CrossSales += r.CrossSales
		if r.TrainingStatus != "" && r.TrainingStatus != model.TrainingNotAvailable {
			s.TrainingStatus = r.TrainingStatus
		}
	}

	for i := range staff {
		staff[i].CrossSalePercentage = Percentage(staff[i].CrossSales, staff[i].TotalSales)
	}
	return staff
}

// AssignRanks sets SaleRank and CrossSaleRank by descending amount.
// Ties keep first-seen order, so every rank is distinct.
func AssignRanks(staff []model.StaffSummary) {
	order := make([]int, len(staff))

	resetOrder := func() {
		for i := range order {
			order[i] = i
		}
	}

	resetOrder()
	sort.SliceStable(order, func(a, b int) bool {
		return staff[order[a]].TotalSales > staff[order[b]].TotalSales
	})
	for pos, i := range order {
		staff[i].SaleRank = pos + 1
	}

	resetOrder()
	sort.SliceStable(order, func(a, b int) bool {
		return staff[order[a]].CrossSales > staff[order[b]].CrossSales
	})
	for pos, i := range order {
		staff[i].CrossSaleRank = pos + 1
	}
}

// TopProducts sums product columns and keeps the largest n
func (c *Calculator) TopProducts(records []model.RawSalesRecord) []model.ChartPoint {
	points := make([]model.ChartPoint, len(c.categories))
	for i, cat := range c.categories {
		points[i].Name = cat
	}

	for _, r := range records {
		for i, cat := range c.categories {
			points[i].Value += categoryValue(r, cat)
		}
	}

	sort.SliceStable(points, func(a, b int) bool {
		return points[a].Value > points[b].Value
	})
	if len(points) > c.topN {
		points = points[:c.topN]
	}
	return points
}

// categoryValue reads the exact column when it holds a number, otherwise the first
// column whose lowercased name contains the category. Stored records do not keep
// sheet column order, so candidates are tried in sorted name order: with "Ring Sales"
// and "Earrings" both present, "Earrings" is the match for Ring.
func categoryValue(r model.RawSalesRecord, cat string) float64 {
	if v, ok := r.Extra[cat]; ok {
		if f, ok := model.ParseNumber(v); ok {
			return f
		}
	}

	needle := strings.ToLower(cat)
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(strings.ToLower(k), needle) {
			return model.ToNumber(r.Extra[k])
		}
	}
	return 0
}

// CrossSaleSplit splits total sales into cross and other
func CrossSaleSplit(m model.DashboardMetrics) []model.ChartPoint {
	return []model.ChartPoint{
		{Name: "Cross Sales", Value: m.CrossSalePercentage},
		{Name: "Regular Sales", Value: Round1(100 - m.CrossSalePercentage)},
	}
}

// FilterOptions are the distinct filter values
type FilterOptions struct {
	Showrooms []string `json:"showrooms"`
	Months    []string `json:"months"`
	Counters  []string `json:"counters"`
}

// Options collects distinct non-empty values in first-seen order
func Options(records []model.RawSalesRecord) FilterOptions {
	opts := FilterOptions{
		Showrooms: []string{},
		Months:    []string{},
		Counters:  []string{},
	}
	seen := map[string]map[string]bool{
		"showroom": {},
		"month":    {},
		"counter":  {},
	}
	add := func(kind, v string, dst *[]string) {
		if v == "" || seen[kind][v] {
			return
		}
		seen[kind][v] = true
		*dst = append(*dst, v)
	}
	for _, r := range records {
		add("showroom", r.ShowRoom, &opts.Showrooms)
		add("month", r.BillMo, &opts.Months)
		add("counter", r.Counter, &opts.Counters)
	}
	return opts
}

// ApplyTrainingStatus returns a copy of records with every row of staff id set to
// status, and the number of rows changed.
func ApplyTrainingStatus(records []model.RawSalesRecord, id, status string) ([]model.RawSalesRecord, int, error) {
	if !model.IsTrainingStatus(status) {
		return nil, 0, ErrUnknownStatus
	}
	out := make([]model.RawSalesRecord, len(records))
	touched := 0
	for i, r := range records {
		if StaffID(r) == id {
			r.TrainingStatus = status
			touched++
		}
		out[i] = r
	}
	return out, touched, nil
}

// ApplyStatusOverrides rewrites rows whose StaffID has an override; returns the number
// of distinct staff ids restored.
func ApplyStatusOverrides(records []model.RawSalesRecord, overrides map[string]string) int {
	if len(overrides) == 0 {
		return 0
	}
	restored := make(map[string]bool)
	for i := range records {
		id := StaffID(records[i])
		status, ok := overrides[id]
		if !ok || !model.IsTrainingStatus(status) {
			continue
		}
		records[i].TrainingStatus = status
		restored[id] = true
	}
	return len(restored)
}

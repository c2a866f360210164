package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

// sample records
func createTestRecords() []model.RawSalesRecord {
	return []model.RawSalesRecord{
		{
			SalesmanCode: "101", SalesmanName: "Anita", ShowRoom: "T Nagar", BillMo: "Apr", Counter: "Gold",
			TotalSales: 1000, CrossSales: 100, TrainingStatus: model.TrainingNotAvailable,
			Extra: map[string]any{"Bangle": 400.0, "Chain": 100.0},
		},
		{
			SalesmanCode: "102", SalesmanName: "Ravi", ShowRoom: "T Nagar", BillMo: "Apr", Counter: "Diamond",
			TotalSales: 3000, CrossSales: 50, TrainingStatus: "",
			Extra: map[string]any{"Bangle": 100.0, "Ring Sales": 900.0},
		},
		{
			SalesmanCode: "101", SalesmanName: "Anita (dup)", ShowRoom: "Adyar", BillMo: "May", Counter: "Silver",
			TotalSales: 500, CrossSales: 200, TrainingStatus: model.TrainingCompleted,
			Extra: map[string]any{"Bangle": "bad", "Chain": "250"},
		},
		{
			SalesmanCode: "0", SalesmanName: "Kumar", ShowRoom: "Adyar", BillMo: "May", Counter: "Gold",
			TotalSales: 1500, CrossSales: 300,
		},
	}
}

func TestStaffID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  model.RawSalesRecord
		want string
	}{
		{"valid code", model.RawSalesRecord{SalesmanCode: "55", SalesmanName: "X"}, "55"},
		{"zero code", model.RawSalesRecord{SalesmanCode: "0", SalesmanName: "Kumar", ShowRoom: "Adyar", Counter: "Gold"}, "Kumar-Adyar-Gold"},
		{"empty code", model.RawSalesRecord{SalesmanName: "Kumar"}, "Kumar-Unknown-Unknown"},
		{"undefined", model.RawSalesRecord{SalesmanCode: "undefined"}, "Unknown-Unknown-Unknown"},
		{"null", model.RawSalesRecord{SalesmanCode: "null", ShowRoom: "A"}, "Unknown-A-Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StaffID(tt.rec); got != tt.want {
				t.Errorf("StaffID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "N/A", DisplayCode(model.RawSalesRecord{SalesmanCode: "0"}))
	assert.Equal(t, "N/A", DisplayCode(model.RawSalesRecord{}))
	assert.Equal(t, "N/A", DisplayCode(model.RawSalesRecord{SalesmanCode: "null"}))
	assert.Equal(t, "77", DisplayCode(model.RawSalesRecord{SalesmanCode: "77"}))
}

func TestProcess_AggregatesAndRanks(t *testing.T) {
	t.Parallel()

	res := NewCalculator().Process(createTestRecords(), model.DefaultFilters())
	require.Len(t, res.Staff, 3)

	anita := res.Staff[0]
	assert.Equal(t, "101", anita.ID)
	assert.Equal(t, "Anita", anita.Name, "first record fixes identity")
	assert.Equal(t, "T Nagar", anita.Showroom)
	assert.Equal(t, 1500.0, anita.TotalSales)
	assert.Equal(t, 300.0, anita.CrossSales)
	assert.Equal(t, 20.0, anita.CrossSalePercentage)
	assert.Equal(t, model.TrainingCompleted, anita.TrainingStatus, "real status overrides Not Available")

	ravi := res.Staff[1]
	assert.Equal(t, model.TrainingNotAvailable, ravi.TrainingStatus)
	assert.Equal(t, 1.7, ravi.CrossSalePercentage)

	kumar := res.Staff[2]
	assert.Equal(t, "Kumar-Adyar-Gold", kumar.ID)
	assert.Equal(t, "N/A", kumar.DisplayCode)

	// sales: ravi 3000, anita 1500, kumar 1500 (tie keeps first-seen order)
	assert.Equal(t, 1, ravi.SaleRank)
	assert.Equal(t, 2, anita.SaleRank)
	assert.Equal(t, 3, kumar.SaleRank)

	// cross: anita 300, kumar 300 (tie), ravi 50
	assert.Equal(t, 1, anita.CrossSaleRank)
	assert.Equal(t, 2, kumar.CrossSaleRank)
	assert.Equal(t, 3, ravi.CrossSaleRank)

	assert.Equal(t, 6000.0, res.Metrics.TotalSales)
	assert.Equal(t, 650.0, res.Metrics.TotalCrossSales)
	assert.Equal(t, 10.8, res.Metrics.CrossSalePercentage)
}

func TestProcess_Filters(t *testing.T) {
	t.Parallel()

	res := NewCalculator().Process(createTestRecords(), model.FilterState{
		Showroom:  "Adyar",
		BillMonth: model.AllMonths,
		Counter:   "Gold",
	})
	require.Len(t, res.Staff, 1)
	assert.Equal(t, "Kumar", res.Staff[0].Name)
	assert.Equal(t, 1, res.Staff[0].SaleRank)
	assert.Equal(t, 1500.0, res.Metrics.TotalSales)
	assert.Equal(t, 20.0, res.Metrics.CrossSalePercentage)
}

func TestProcess_Empty(t *testing.T) {
	t.Parallel()

	res := NewCalculator().Process(nil, model.FilterState{})
	assert.Empty(t, res.Staff)
	assert.NotNil(t, res.Staff)
	assert.Equal(t, 0.0, res.Metrics.CrossSalePercentage)
	require.Len(t, res.Metrics.TopProducts, DefaultTopProducts)
	for _, p := range res.Metrics.TopProducts {
		assert.Equal(t, 0.0, p.Value)
	}
}

func TestProcess_ZeroSalesPercentage(t *testing.T) {
	t.Parallel()

	res := NewCalculator().Process([]model.RawSalesRecord{
		{SalesmanCode: "9", CrossSales: 50},
	}, model.FilterState{})
	require.Len(t, res.Staff, 1)
	assert.Equal(t, 0.0, res.Staff[0].CrossSalePercentage)
}

func TestPercentage_MatchesDisplayedDecimal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		part, whole, want float64
	}{
		{3, 2000, 0.1}, // 0.15 is stored just below .15
		{9, 2000, 0.4},
		{19, 2000, 0.9},
		{1, 8, 12.5},
		{2, 3, 66.7},
		{5, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Percentage(tc.part, tc.whole), "Percentage(%v, %v)", tc.part, tc.whole)
	}
}

func TestRound1_ExactTiesRoundAwayFromZero(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want float64
	}{
		{0.25, 0.3},
		{12.25, 12.3},
		{-0.25, -0.3},
		{17.77, 17.8},
		{100, 100},
		{0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Round1(tc.in), "Round1(%v)", tc.in)
	}
}

func TestProcess_PercentageBoundary(t *testing.T) {
	t.Parallel()

	res := NewCalculator().Process([]model.RawSalesRecord{
		{SalesmanCode: "1", TotalSales: 2000, CrossSales: 3},
	}, model.FilterState{})
	require.Len(t, res.Staff, 1)
	assert.Equal(t, 0.1, res.Staff[0].CrossSalePercentage)
	assert.Equal(t, 0.1, res.Metrics.CrossSalePercentage)
}

func TestTopProducts(t *testing.T) {
	t.Parallel()

	points := NewCalculator().TopProducts(createTestRecords())
	require.Len(t, points, 8)

	// Ring: "Ring Sales" substring match = 900; Chain 100+250 = 350; Bangle 400+100+0 = 500
	assert.Equal(t, model.ChartPoint{Name: "Ring", Value: 900}, points[0])
	assert.Equal(t, model.ChartPoint{Name: "Bangle", Value: 500}, points[1])
	assert.Equal(t, model.ChartPoint{Name: "Chain", Value: 350}, points[2])
	// remaining zeros keep category order
	assert.Equal(t, "Earrings", points[3].Name)
}

func TestCategoryValue_MalformedExactFallsBackToContains(t *testing.T) {
	t.Parallel()

	r := model.RawSalesRecord{Extra: map[string]any{
		"Kids":       "oops",
		"Kids Total": 70.0,
	}}
	// "Kids" itself is not numeric, first contains-match in name order is "Kids" (still bad) => 0
	assert.Equal(t, 0.0, categoryValue(r, "Kids"))

	r = model.RawSalesRecord{Extra: map[string]any{"NECKLACE amt": "45"}}
	assert.Equal(t, 45.0, categoryValue(r, "Necklace"))

	// contains-matches are tried in name order
	r = model.RawSalesRecord{Extra: map[string]any{"Ring Sales": 900.0, "Earrings": 30.0}}
	assert.Equal(t, 30.0, categoryValue(r, "Ring"))
}

func TestCrossSaleSplit(t *testing.T) {
	t.Parallel()

	split := CrossSaleSplit(model.DashboardMetrics{CrossSalePercentage: 12.3})
	assert.Equal(t, []model.ChartPoint{
		{Name: "Cross Sales", Value: 12.3},
		{Name: "Regular Sales", Value: 87.7},
	}, split)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	records := createTestRecords()
	records = append(records, model.RawSalesRecord{ShowRoom: "", BillMo: "Apr", Counter: ""})

	opts := Options(records)
	assert.Equal(t, []string{"T Nagar", "Adyar"}, opts.Showrooms)
	assert.Equal(t, []string{"Apr", "May"}, opts.Months)
	assert.Equal(t, []string{"Gold", "Diamond", "Silver"}, opts.Counters)
}

func TestApplyTrainingStatus(t *testing.T) {
	t.Parallel()

	records := createTestRecords()
	out, touched, err := ApplyTrainingStatus(records, "101", model.TrainingInProgress)
	require.NoError(t, err)
	assert.Equal(t, 2, touched)
	assert.Equal(t, model.TrainingInProgress, out[0].TrainingStatus)
	assert.Equal(t, model.TrainingInProgress, out[2].TrainingStatus)
	assert.Equal(t, model.TrainingNotAvailable, records[0].TrainingStatus, "input must not be mutated")

	_, _, err = ApplyTrainingStatus(records, "101", "Sleeping")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestApplyStatusOverrides(t *testing.T) {
	t.Parallel()

	records := createTestRecords()
	n := ApplyStatusOverrides(records, map[string]string{
		"Kumar-Adyar-Gold": model.TrainingCompleted,
		"101":              model.TrainingNotApplicable,
		"999":              model.TrainingCompleted,
		"102":              "bogus",
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, model.TrainingNotApplicable, records[0].TrainingStatus)
	assert.Equal(t, model.TrainingNotApplicable, records[2].TrainingStatus)
	assert.Equal(t, model.TrainingCompleted, records[3].TrainingStatus)
	assert.Equal(t, "", records[1].TrainingStatus)
}

func TestSortStaff(t *testing.T) {
	t.Parallel()

	res := NewCalculator().Process(createTestRecords(), model.FilterState{})

	bySale := SortStaff(res.Staff, SortBySaleRank, Asc)
	assert.Equal(t, "Ravi", bySale[0].Name)

	byCross := SortStaff(res.Staff, SortByCrossSales, Desc)
	assert.Equal(t, 300.0, byCross[0].CrossSales)
	assert.Equal(t, "Ravi", byCross[2].Name)

	// original order untouched
	assert.Equal(t, "Anita", res.Staff[0].Name)

	f, o := ParseSort("nonsense", "sideways")
	assert.Equal(t, SortBySaleRank, f)
	assert.Equal(t, Asc, o)
}

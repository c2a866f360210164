package calculator

import (
	"sort"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

// SortField is a sortable rankings column
type SortField string

const (
	SortBySaleRank      SortField = "saleRank"
	SortByCrossSaleRank SortField = "crossSaleRank"
	SortByTotalSales    SortField = "totalSales"
	SortByCrossSales    SortField = "crossSales"
)

// SortOrder is asc or desc
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSort falls back to saleRank/asc for unknown values.
func ParseSort(field, order string) (SortField, SortOrder) {
	f := SortField(field)
	switch f {
	case SortBySaleRank, SortByCrossSaleRank, SortByTotalSales, SortByCrossSales:
	default:
		f = SortBySaleRank
	}
	o := SortOrder(order)
	if o != Desc {
		o = Asc
	}
	return f, o
}

func sortKey(s model.StaffSummary, field SortField) float64 {
	switch field {
	case SortByCrossSaleRank:
		return float64(s.CrossSaleRank)
	case SortByTotalSales:
		return s.TotalSales
	case SortByCrossSales:
		return s.CrossSales
	default:
		return float64(s.SaleRank)
	}
}

// SortStaff returns a sorted copy
func SortStaff(staff []model.StaffSummary, field SortField, order SortOrder) []model.StaffSummary {
	out := make([]model.StaffSummary, len(staff))
	copy(out, staff)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := sortKey(out[i], field), sortKey(out[j], field)
		if order == Desc {
			return a > b
		}
		return a < b
	})
	return out
}

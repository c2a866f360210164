package model

import "time"

// StaffSummary is one salesman's aggregated row
type StaffSummary struct {
	ID                  string  `json:"id"`          // code, or name-showroom-counter
	DisplayCode         string  `json:"displayCode"` // N/A when the code is missing
	Name                string  `json:"name"`
	Counter             string  `json:"counter"`
	Showroom            string  `json:"showroom"`
	TotalSales          float64 `json:"totalSales"`
	CrossSales          float64 `json:"crossSales"`
	CrossSalePercentage float64 `json:"crossSalePercentage"`
	TrainingStatus      string  `json:"trainingStatus"`
	SaleRank            int     `json:"saleRank"`
	CrossSaleRank       int     `json:"crossSaleRank"`
}

// ChartPoint is one bar or slice
type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DashboardMetrics holds the headline numbers
type DashboardMetrics struct {
	TotalSales          float64      `json:"totalSales"`
	TotalCrossSales     float64      `json:"totalCrossSales"`
	CrossSalePercentage float64      `json:"crossSalePercentage"`
	TopProducts         []ChartPoint `json:"topProducts"`
}

// Filter sentinels meaning "no filter"
const (
	AllShowrooms = "All Showrooms"
	AllMonths    = "All Months"
	AllCounters  = "All Counters"
)

// FilterState is the showroom/month/counter selection
type FilterState struct {
	Showroom  string `json:"showroom" form:"showroom"`
	BillMonth string `json:"billMonth" form:"billMonth"`
	Counter   string `json:"counter" form:"counter"`
}

// DefaultFilters selects everything
func DefaultFilters() FilterState {
	return FilterState{
		Showroom:  AllShowrooms,
		BillMonth: AllMonths,
		Counter:   AllCounters,
	}
}

// Normalize fills empty fields with their sentinel.
func (f FilterState) Normalize() FilterState {
	if f.Showroom == "" {
		f.Showroom = AllShowrooms
	}
	if f.BillMonth == "" {
		f.BillMonth = AllMonths
	}
	if f.Counter == "" {
		f.Counter = AllCounters
	}
	return f
}

// Training statuses
const (
	TrainingCompleted     = "Completed"
	TrainingInProgress    = "In Progress"
	TrainingNotApplicable = "Not Applicable"
	TrainingNotAvailable  = "Not Available"
)

// TrainingStatusOptions lists the allowed training statuses
var TrainingStatusOptions = []string{
	TrainingCompleted,
	TrainingInProgress,
	TrainingNotApplicable,
	TrainingNotAvailable,
}

// IsTrainingStatus reports whether s is one of TrainingStatusOptions.
func IsTrainingStatus(s string) bool {
	for _, opt := range TrainingStatusOptions {
		if opt == s {
			return true
		}
	}
	return false
}

// ImportLog records one import attempt
type ImportLog struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	FileSize    int64     `json:"fileSize"`
	FileHash    string    `json:"fileHash"`
	TotalRows   int       `json:"totalRows"`
	SkippedRows int       `json:"skippedRows"`
	StaffCount  int       `json:"staffCount"`
	Restored    int       `json:"restoredStatuses"`
	Status      string    `json:"status"` // success/error
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
}

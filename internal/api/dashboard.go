package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/calculator"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/util"
)

// Mask replaces amounts for restricted viewers.
const Mask = "***,***"

// DashboardQuery is the /dashboard query string
type DashboardQuery struct {
	model.FilterState
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

// StaffRow is one table row. Amounts are omitted for restricted viewers.
type StaffRow struct {
	ID                  string   `json:"id"`
	DisplayCode         string   `json:"displayCode"`
	Name                string   `json:"name"`
	Counter             string   `json:"counter"`
	Showroom            string   `json:"showroom"`
	TotalSales          *float64 `json:"totalSales,omitempty"`
	CrossSales          *float64 `json:"crossSales,omitempty"`
	TotalSalesDisplay   string   `json:"totalSalesDisplay,omitempty"`
	CrossSalesDisplay   string   `json:"crossSalesDisplay,omitempty"`
	CrossSalePercentage float64  `json:"crossSalePercentage"`
	TrainingStatus      string   `json:"trainingStatus"`
	SaleRank            int      `json:"saleRank"`
	CrossSaleRank       int      `json:"crossSaleRank"`
}

// MetricsView holds the metric cards, masked for restricted viewers
type MetricsView struct {
	TotalSales             *float64 `json:"totalSales,omitempty"`
	TotalCrossSales        *float64 `json:"totalCrossSales,omitempty"`
	TotalSalesDisplay      string   `json:"totalSalesDisplay"`
	TotalCrossSalesDisplay string   `json:"totalCrossSalesDisplay"`
	CrossSalePercentage    float64  `json:"crossSalePercentage"`
}

// SortState echoes the applied sort
type SortState struct {
	Field calculator.SortField `json:"field"`
	Order calculator.SortOrder `json:"order"`
}

// DashboardView is everything the dashboard page renders.
type DashboardView struct {
	IsAdmin               bool                     `json:"isAdmin"`
	SetupRequired         bool                     `json:"setupRequired"`
	Empty                 bool                     `json:"empty"`
	CanEditStatus         bool                     `json:"canEditStatus"`
	Filters               model.FilterState        `json:"filters"`
	Options               calculator.FilterOptions `json:"options"`
	Metrics               MetricsView              `json:"metrics"`
	CrossSaleSplit        []model.ChartPoint       `json:"crossSaleSplit"`
	TopProducts           []model.ChartPoint       `json:"topProducts"`
	Staff                 []StaffRow               `json:"staffData"`
	Sort                  SortState                `json:"sort"`
	TrainingStatusOptions []string                 `json:"trainingStatusOptions"`
}

// Dashboard loads the dataset and shapes it for the viewer's role.
func (h *Handler) Dashboard(ctx context.Context, q DashboardQuery, isAdmin bool) (*DashboardView, error) {
	records, err := h.store.LoadSales(ctx)
	if err != nil {
		return nil, err
	}

	filters := q.FilterState.Normalize()
	field, order := calculator.ParseSort(q.Sort, q.Order)
	result := h.calc.Process(records, filters)
	staff := calculator.SortStaff(result.Staff, field, order)

	view := &DashboardView{
		IsAdmin:               isAdmin,
		Empty:                 len(records) == 0,
		SetupRequired:         isAdmin && len(records) == 0,
		CanEditStatus:         isAdmin || !h.opts.RestrictStatusEdit,
		Filters:               filters,
		Options:               calculator.Options(records),
		Metrics:               shapeMetrics(result.Metrics, isAdmin),
		CrossSaleSplit:        calculator.CrossSaleSplit(result.Metrics),
		TopProducts:           result.Metrics.TopProducts,
		Staff:                 make([]StaffRow, 0, len(staff)),
		Sort:                  SortState{Field: field, Order: order},
		TrainingStatusOptions: model.TrainingStatusOptions,
	}
	if view.TopProducts == nil {
		view.TopProducts = []model.ChartPoint{}
	}
	for _, s := range staff {
		view.Staff = append(view.Staff, shapeStaff(s, isAdmin))
	}
	return view, nil
}

func shapeMetrics(m model.DashboardMetrics, isAdmin bool) MetricsView {
	v := MetricsView{
		CrossSalePercentage:    m.CrossSalePercentage,
		TotalSalesDisplay:      Mask,
		TotalCrossSalesDisplay: Mask,
	}
	if isAdmin {
		total, cross := m.TotalSales, m.TotalCrossSales
		v.TotalSales = &total
		v.TotalCrossSales = &cross
		v.TotalSalesDisplay = util.FormatCurrency(total)
		v.TotalCrossSalesDisplay = util.FormatCurrency(cross)
	}
	return v
}

func shapeStaff(s model.StaffSummary, isAdmin bool) StaffRow {
	row := StaffRow{
		ID:                  s.ID,
		DisplayCode:         s.DisplayCode,
		Name:                s.Name,
		Counter:             s.Counter,
		Showroom:            s.Showroom,
		CrossSalePercentage: s.CrossSalePercentage,
		TrainingStatus:      s.TrainingStatus,
		SaleRank:            s.SaleRank,
		CrossSaleRank:       s.CrossSaleRank,
	}
	if isAdmin {
		total, cross := s.TotalSales, s.CrossSales
		row.TotalSales = &total
		row.CrossSales = &cross
		row.TotalSalesDisplay = util.FormatCurrency(total)
		row.CrossSalesDisplay = util.FormatCurrency(cross)
	}
	return row
}

// GetDashboard returns the dashboard view
// GET /api/dashboard?showroom=&billMonth=&counter=&sort=&order=
func (h *Handler) GetDashboard(c *gin.Context) {
	var q DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	view, err := h.Dashboard(c.Request.Context(), q, IsAdmin(c))
	if err != nil {
		h.logger.Error("load dashboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load data"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// FiltersResponse lists filter choices and defaults
type FiltersResponse struct {
	calculator.FilterOptions
	Defaults model.FilterState `json:"defaults"`
}

// GetFilters returns the filter dropdown values
// GET /api/filters
func (h *Handler) GetFilters(c *gin.Context) {
	records, err := h.store.LoadSales(c.Request.Context())
	if err != nil {
		h.logger.Error("load filters", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load data"})
		return
	}
	c.JSON(http.StatusOK, FiltersResponse{
		FilterOptions: calculator.Options(records),
		Defaults:      model.DefaultFilters(),
	})
}

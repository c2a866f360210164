package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/exporter"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteReport writes the filtered, sorted staff table as an xlsx workbook to w.
// Restricted viewers get ranks in place of amounts. progress may be nil.
func (h *Handler) WriteReport(ctx context.Context, w io.Writer, q DashboardQuery, isAdmin bool, progress func(exporter.ProgressEvent)) error {
	view, err := h.Dashboard(ctx, q, isAdmin)
	if err != nil {
		return err
	}

	staff := make([]model.StaffSummary, 0, len(view.Staff))
	for _, r := range view.Staff {
		s := model.StaffSummary{
			ID:                  r.ID,
			DisplayCode:         r.DisplayCode,
			Name:                r.Name,
			Counter:             r.Counter,
			Showroom:            r.Showroom,
			CrossSalePercentage: r.CrossSalePercentage,
			TrainingStatus:      r.TrainingStatus,
			SaleRank:            r.SaleRank,
			CrossSaleRank:       r.CrossSaleRank,
		}
		if r.TotalSales != nil {
			s.TotalSales = *r.TotalSales
		}
		if r.CrossSales != nil {
			s.CrossSales = *r.CrossSales
		}
		staff = append(staff, s)
	}

	f, err := h.exporter.Export(exporter.ExportOptions{
		Staff:      staff,
		Restricted: !isAdmin,
		Progress:   progress,
	})
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Export downloads the training report
// GET /api/export?showroom=&billMonth=&counter=&sort=&order=
func (h *Handler) Export(c *gin.Context) {
	var q DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	var buf bytes.Buffer
	progress := func(p exporter.ProgressEvent) {
		h.logger.Debug("export progress", zap.String("stage", p.Stage), zap.Int("percent", p.Percent))
	}
	if err := h.WriteReport(c.Request.Context(), &buf, q, IsAdmin(c), progress); err != nil {
		h.logger.Error("export report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.opts.ReportFilename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

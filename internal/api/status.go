package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/auth"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/calculator"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/store"
)

// StatusResponse is the /status payload
type StatusResponse struct {
	Initialized bool             `json:"initialized"` // a dataset has been uploaded
	RecordCount int              `json:"recordCount"`
	StaffCount  int              `json:"staffCount"`
	LastImport  *model.ImportLog `json:"lastImport,omitempty"`
	Role        string           `json:"role"`
	IsAdmin     bool             `json:"isAdmin"`
}

// GetStatus reports whether data has been imported
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	records, err := h.store.LoadSales(ctx)
	if err != nil {
		h.logger.Error("load status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load data"})
		return
	}

	resp := StatusResponse{
		Initialized: len(records) > 0,
		RecordCount: len(records),
		StaffCount:  len(calculator.Aggregate(records)),
		Role:        auth.RoleRestricted,
		IsAdmin:     IsAdmin(c),
	}
	if resp.IsAdmin {
		resp.Role = auth.RoleAdmin
	}

	last, err := h.store.LastImport(ctx)
	switch {
	case err == nil:
		if !resp.IsAdmin {
			last.FileHash = ""
			last.Error = ""
		}
		resp.LastImport = &last
	case !errors.Is(err, store.ErrNotFound):
		h.logger.Warn("load last import", zap.Error(err))
	}

	c.JSON(http.StatusOK, resp)
}

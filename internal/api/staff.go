package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/calculator"
)

// ErrStaffNotFound no record carries the staff id
var ErrStaffNotFound = errors.New("staff not found")

// StatusUpdateRequest is the training status PATCH body
type StatusUpdateRequest struct {
	Status string `json:"status" form:"status" binding:"required"`
}

// StatusUpdateResponse reports how many rows changed
type StatusUpdateResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	UpdatedRows int    `json:"updatedRows"`
}

// SetTrainingStatus rewrites every raw row of staff id, saves the dataset and
// remembers the status so the next upload keeps it.
func (h *Handler) SetTrainingStatus(ctx context.Context, id, status string) (int, error) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	records, err := h.store.LoadSales(ctx)
	if err != nil {
		return 0, err
	}
	updated, touched, err := calculator.ApplyTrainingStatus(records, id, status)
	if err != nil {
		return 0, err
	}
	if touched == 0 {
		return 0, ErrStaffNotFound
	}
	if err := h.store.SaveSales(ctx, updated); err != nil {
		return 0, fmt.Errorf("save dataset: %w", err)
	}

	overrides, err := h.store.LoadStatusOverrides(ctx)
	if err != nil {
		return touched, fmt.Errorf("load status overrides: %w", err)
	}
	overrides[id] = status
	if err := h.store.SaveStatusOverrides(ctx, overrides); err != nil {
		return touched, fmt.Errorf("save status overrides: %w", err)
	}

	h.logger.Info("training status updated",
		zap.String("staff_id", id),
		zap.String("status", status),
		zap.Int("rows", touched),
	)
	return touched, nil
}

// CanEditStatus reports whether the current viewer may change training status.
func (h *Handler) CanEditStatus(c *gin.Context) bool {
	return IsAdmin(c) || !h.opts.RestrictStatusEdit
}

// UpdateTrainingStatus changes one staff member's training status
// PATCH /api/staff/:id/training-status
func (h *Handler) UpdateTrainingStatus(c *gin.Context) {
	if !h.CanEditStatus(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	id := c.Param("id")
	var req StatusUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	n, err := h.SetTrainingStatus(c.Request.Context(), id, req.Status)
	switch {
	case errors.Is(err, calculator.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown training status %q", req.Status)})
		return
	case errors.Is(err, ErrStaffNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff not found"})
		return
	case err != nil:
		h.logger.Error("update training status", zap.String("staff_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, StatusUpdateResponse{ID: id, Status: req.Status, UpdatedRows: n})
}

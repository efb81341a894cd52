package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timetable-backend/internal/model"
	"timetable-backend/internal/store"
	"timetable-backend/internal/timetable"
)

type breakRequest struct {
	Name      string `json:"name" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// ListBreaks handles GET /api/breaks.
func (h *Handler) ListBreaks(c *gin.Context) {
	rows, err := h.store.ListBreaks(c.Request.Context())
	if err != nil {
		h.abortWithStoreError(c, err, "retrieve breaks")
		return
	}

	breaks := make([]timetable.Break, 0, len(rows))
	for _, row := range rows {
		b, err := store.ToBreak(row)
		if err != nil {
			h.log.Warn("hiding invalid break", zap.Int64("break_id", row.ID), zap.Error(err))
			continue
		}
		breaks = append(breaks, b)
	}
	c.JSON(http.StatusOK, breaks)
}

// CreateBreak handles POST /api/breaks.
func (h *Handler) CreateBreak(c *gin.Context) {
	var req breakRequest
	if !bindJSON(c, &req) {
		return
	}

	row := model.Break{Name: req.Name, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := h.store.CreateBreak(c.Request.Context(), &row); err != nil {
		h.abortWithStoreError(c, err, "create break")
		return
	}
	h.refreshSchedule(c)

	b, _ := store.ToBreak(row)
	c.JSON(http.StatusCreated, b)
}

// DeleteBreak handles DELETE /api/breaks/:id.
func (h *Handler) DeleteBreak(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteBreak(c.Request.Context(), id); err != nil {
		h.abortWithStoreError(c, err, "delete break")
		return
	}
	h.refreshSchedule(c)
	c.Status(http.StatusNoContent)
}

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timetable-backend/internal/model"
	"timetable-backend/internal/store"
	"timetable-backend/internal/timetable"
)

type slotRequest struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	Teacher   string `json:"teacher"`
	Room      string `json:"room"`
}

func (r slotRequest) toModel() (model.ClassSlot, error) {
	day, err := timetable.ParseWeekday(r.Day)
	if err != nil {
		return model.ClassSlot{}, err
	}
	return model.ClassSlot{
		Day:       int(day),
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Subject:   r.Subject,
		Teacher:   r.Teacher,
		Room:      r.Room,
	}, nil
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

// ListSlots handles GET /api/slots.
func (h *Handler) ListSlots(c *gin.Context) {
	rows, err := h.store.ListSlots(c.Request.Context())
	if err != nil {
		h.abortWithStoreError(c, err, "retrieve slots")
		return
	}

	slots := make([]timetable.ClassSlot, 0, len(rows))
	for _, row := range rows {
		slot, err := store.ToClassSlot(row)
		if err != nil {
			h.log.Warn("hiding invalid class slot", zap.Int64("slot_id", row.ID), zap.Error(err))
			continue
		}
		slots = append(slots, slot)
	}
	c.JSON(http.StatusOK, slots)
}

// CreateSlot handles POST /api/slots.
func (h *Handler) CreateSlot(c *gin.Context) {
	var req slotRequest
	if !bindJSON(c, &req) {
		return
	}
	row, err := req.toModel()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.CreateSlot(c.Request.Context(), &row); err != nil {
		h.abortWithStoreError(c, err, "create slot")
		return
	}
	h.refreshSchedule(c)

	slot, _ := store.ToClassSlot(row)
	c.JSON(http.StatusCreated, slot)
}

// UpdateSlot handles PUT /api/slots/:id.
func (h *Handler) UpdateSlot(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req slotRequest
	if !bindJSON(c, &req) {
		return
	}
	row, err := req.toModel()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row.ID = id

	if err := h.store.UpdateSlot(c.Request.Context(), &row); err != nil {
		h.abortWithStoreError(c, err, "update slot")
		return
	}
	h.refreshSchedule(c)

	slot, _ := store.ToClassSlot(row)
	c.JSON(http.StatusOK, slot)
}

// DeleteSlot handles DELETE /api/slots/:id.
func (h *Handler) DeleteSlot(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteSlot(c.Request.Context(), id); err != nil {
		h.abortWithStoreError(c, err, "delete slot")
		return
	}
	h.refreshSchedule(c)
	c.Status(http.StatusNoContent)
}

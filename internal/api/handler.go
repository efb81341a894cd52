package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timetable-backend/internal/store"
	"timetable-backend/internal/timetable"
)

// ScheduleSource serves the in-memory timetable snapshot.
type ScheduleSource interface {
	Snapshot() timetable.WeekSchedule
	Resolve(at time.Time) timetable.Result
	Refresh(ctx context.Context) error
	OnChange(fn func())
	Now() time.Time
	Location() *time.Location
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	schedule ScheduleSource
	webpush  *webpush.Options
	log      *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, schedule ScheduleSource, webpushOptions *webpush.Options, log *zap.Logger) *Handler {
	return &Handler{
		store:    s,
		schedule: schedule,
		webpush:  webpushOptions,
		log:      log,
	}
}

// refreshSchedule rebuilds the snapshot after a write so the next read sees it.
func (h *Handler) refreshSchedule(c *gin.Context) {
	if err := h.schedule.Refresh(c.Request.Context()); err != nil {
		h.log.Warn("schedule refresh after write failed", zap.Error(err))
	}
}

func (h *Handler) abortWithStoreError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, store.ErrInvalidRecord):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error("store operation failed", zap.String("action", action), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return false
	}
	return true
}

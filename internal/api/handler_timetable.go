package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"timetable-backend/internal/timetable"
)

// GetTimetable handles GET /api/timetable.
func (h *Handler) GetTimetable(c *gin.Context) {
	ws := h.schedule.Snapshot()
	if ws.Days == nil {
		ws.Days = map[timetable.Weekday][]timetable.ClassSlot{}
	}
	if ws.Breaks == nil {
		ws.Breaks = []timetable.Break{}
	}
	c.JSON(http.StatusOK, ws)
}

type nowResponse struct {
	At           time.Time         `json:"at"`
	Weekday      timetable.Weekday `json:"weekday"`
	NextStartsAt *time.Time        `json:"next_starts_at"`
	timetable.Result
}

// GetNow handles GET /api/timetable/now. The optional "at" query parameter
// (RFC3339) resolves a different instant.
func (h *Handler) GetNow(c *gin.Context) {
	at := h.schedule.Now()
	if raw := c.Query("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'at' timestamp format. Use RFC3339."})
			return
		}
		at = t.In(h.schedule.Location())
	}

	res := h.schedule.Resolve(at)
	resp := nowResponse{
		At:      at,
		Weekday: timetable.WeekdayOf(at),
		Result:  res,
	}
	if res.Next != nil {
		startsAt := timetable.NextStart(*res.Next, at)
		resp.NextStartsAt = &startsAt
	}
	c.JSON(http.StatusOK, resp)
}

// GetDay handles GET /api/timetable/days/:day, the merged slot and break view.
func (h *Handler) GetDay(c *gin.Context) {
	day, err := timetable.ParseWeekday(c.Param("day"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries := timetable.DayAgenda(h.schedule.Snapshot(), day)
	if entries == nil {
		entries = []timetable.AgendaEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "school_day": day.IsSchoolDay(), "entries": entries})
}

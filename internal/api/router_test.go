package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"timetable-backend/config"
	"timetable-backend/internal/model"
	"timetable-backend/internal/refresher"
	"timetable-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testServerConfig = config.ServerConfig{
	RateLimitPerSec: 1000,
	RateLimitBurst:  1000,
	CacheTTLSeconds: 60,
}

// setupRouter wires the router to a private in-memory database seeded with
// a Monday of Math then Science and a shared recess.
func setupRouter(t *testing.T, webpushOptions *webpush.Options) (*gin.Engine, store.Store) {
	t.Helper()
	router, s, _ := setupRouterWithSchedule(t, webpushOptions)
	return router, s
}

func setupRouterWithSchedule(t *testing.T, webpushOptions *webpush.Options) (*gin.Engine, store.Store, *refresher.Service) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.ClassSlot{}, &model.Break{}, &model.PushSubscription{}))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	log := zap.NewNop()
	s := store.NewGormStore(gormDB, log)
	require.NoError(t, gormDB.Create(&[]model.ClassSlot{
		{Day: 1, StartTime: "08:00", EndTime: "08:45", Subject: "Math", Room: "B12"},
		{Day: 1, StartTime: "08:45", EndTime: "09:30", Subject: "Science"},
		{Day: 2, StartTime: "10:00", EndTime: "10:45", Subject: "History"},
	}).Error)
	require.NoError(t, gormDB.Create(&model.Break{Name: "Recess", StartTime: "09:30", EndTime: "09:45"}).Error)

	schedule, err := refresher.NewService(config.ScheduleConfig{Timezone: "UTC"}, s, nil, log)
	require.NoError(t, err)
	require.NoError(t, schedule.Refresh(testContext(t)))

	return NewRouter(s, schedule, webpushOptions, testServerConfig, log), s, schedule
}

func request(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func subject(v any) any {
	if m, ok := v.(map[string]any); ok {
		return m["subject"]
	}
	return nil
}

func TestGetNow(t *testing.T) {
	router, _ := setupRouter(t, nil)

	testCases := []struct {
		name         string
		at           string
		wantCurrent  any
		wantNext     any
		wantNextAt   any
		wantProgress any
	}{
		{
			name:         "During Math",
			at:           "2024-01-01T08:20:00Z",
			wantCurrent:  "Math",
			wantNext:     "Science",
			wantNextAt:   "2024-01-01T08:45:00Z",
			wantProgress: 20.0 / 45.0,
		},
		{
			name:       "Half-open end rolls to Tuesday",
			at:         "2024-01-01T09:30:00Z",
			wantNext:   "History",
			wantNextAt: "2024-01-02T10:00:00Z",
		},
		{
			name:       "Friday evening wraps to Monday",
			at:         "2024-01-05T17:00:00Z",
			wantNext:   "Math",
			wantNextAt: "2024-01-08T08:00:00Z",
		},
		{
			name:       "Sunday",
			at:         "2024-01-07T12:00:00Z",
			wantNext:   "Math",
			wantNextAt: "2024-01-08T08:00:00Z",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := request(router, http.MethodGet, "/api/timetable/now?at="+tc.at, nil)
			require.Equal(t, http.StatusOK, w.Code)

			body := decode(t, w)
			assert.Equal(t, tc.wantCurrent, subject(body["current"]))
			assert.Equal(t, tc.wantNext, subject(body["next"]))
			assert.Equal(t, tc.wantNextAt, body["next_starts_at"])
			if tc.wantProgress == nil {
				assert.Nil(t, body["progress"])
			} else {
				assert.InDelta(t, tc.wantProgress, body["progress"], 1e-9)
			}
		})
	}
}

func TestGetNow_BadTimestamp(t *testing.T) {
	router, _ := setupRouter(t, nil)

	w := request(router, http.MethodGet, "/api/timetable/now?at=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(router, http.MethodGet, "/api/timetable/now", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetDay(t *testing.T) {
	router, _ := setupRouter(t, nil)

	w := request(router, http.MethodGet, "/api/timetable/days/monday", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "monday", body["day"])
	entries := body["entries"].([]any)
	require.Len(t, entries, 3)
	assert.Equal(t, "class", entries[0].(map[string]any)["kind"])
	assert.Equal(t, "break", entries[2].(map[string]any)["kind"])

	w = request(router, http.MethodGet, "/api/timetable/days/sat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, false, body["school_day"])
	assert.Empty(t, body["entries"])

	w = request(router, http.MethodGet, "/api/timetable/days/funday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlotLifecycle(t *testing.T) {
	router, _ := setupRouter(t, nil)

	// Prime the cache so the write has something to flush.
	w := request(router, http.MethodGet, "/api/timetable", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["days"].(map[string]any)["friday"])

	w = request(router, http.MethodPost, "/api/slots", gin.H{
		"day": "Friday", "start_time": "13:00", "end_time": "14:00", "subject": "Art", "teacher": "Ms. Lee",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "friday", created["day"])
	id := int64(created["id"].(float64))

	w = request(router, http.MethodGet, "/api/timetable", nil)
	friday := decode(t, w)["days"].(map[string]any)["friday"].([]any)
	require.Len(t, friday, 1)
	assert.Equal(t, "Art", subject(friday[0]))

	w = request(router, http.MethodPut, fmt.Sprintf("/api/slots/%d", id), gin.H{
		"day": "5", "start_time": "14:00", "end_time": "15:00", "subject": "Drawing",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(router, http.MethodGet, "/api/timetable/now?at=2024-01-05T14:30:00Z", nil)
	assert.Equal(t, "Drawing", subject(decode(t, w)["current"]))

	w = request(router, http.MethodDelete, fmt.Sprintf("/api/slots/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = request(router, http.MethodDelete, fmt.Sprintf("/api/slots/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(router, http.MethodGet, "/api/slots", nil)
	var slots []any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slots))
	assert.Len(t, slots, 3)
}

func TestCachedReadsFollowScheduleRefresh(t *testing.T) {
	router, s, schedule := setupRouterWithSchedule(t, nil)

	w := request(router, http.MethodGet, "/api/timetable/days/wednesday", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["entries"], 1)

	w = request(router, http.MethodGet, "/api/timetable/days/wednesday", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	// Written through the store, as an edit made outside the API would be.
	require.NoError(t, s.CreateSlot(testContext(t), &model.ClassSlot{Day: 3, StartTime: "09:00", EndTime: "09:45", Subject: "Music"}))
	require.NoError(t, schedule.Refresh(testContext(t)))

	w = request(router, http.MethodGet, "/api/timetable/days/wednesday", nil)
	assert.Empty(t, w.Header().Get("X-Cache"))
	entries := decode(t, w)["entries"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "Music", subject(entries[0].(map[string]any)["slot"]))

	// An unchanged refresh keeps the cached copy.
	require.NoError(t, schedule.Refresh(testContext(t)))
	w = request(router, http.MethodGet, "/api/timetable/days/wednesday", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
}

func TestSlotValidation(t *testing.T) {
	router, _ := setupRouter(t, nil)

	testCases := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
	}{
		{
			name: "Inverted interval", method: http.MethodPost, target: "/api/slots",
			body:       gin.H{"day": "monday", "start_time": "10:00", "end_time": "09:00", "subject": "Math"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Weekend slot", method: http.MethodPost, target: "/api/slots",
			body:       gin.H{"day": "saturday", "start_time": "10:00", "end_time": "11:00", "subject": "Club"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Unknown day", method: http.MethodPost, target: "/api/slots",
			body:       gin.H{"day": "someday", "start_time": "10:00", "end_time": "11:00", "subject": "Math"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Missing subject", method: http.MethodPost, target: "/api/slots",
			body:       gin.H{"day": "monday", "start_time": "10:00", "end_time": "11:00"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Update of missing slot", method: http.MethodPut, target: "/api/slots/999",
			body:       gin.H{"day": "monday", "start_time": "10:00", "end_time": "11:00", "subject": "Math"},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "Non numeric ID", method: http.MethodDelete, target: "/api/slots/abc",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := request(router, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestBreaks(t *testing.T) {
	router, _ := setupRouter(t, nil)

	w := request(router, http.MethodPost, "/api/breaks", gin.H{"name": "Lunch", "start_time": "12:00", "end_time": "12:45"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int64(decode(t, w)["id"].(float64))

	w = request(router, http.MethodPost, "/api/breaks", gin.H{"name": "Broken", "start_time": "12:00", "end_time": "11:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(router, http.MethodGet, "/api/breaks", nil)
	var breaks []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &breaks))
	require.Len(t, breaks, 2)
	assert.Equal(t, "Recess", breaks[0]["name"])

	w = request(router, http.MethodGet, "/api/timetable/days/tuesday", nil)
	assert.Len(t, decode(t, w)["entries"], 3)

	w = request(router, http.MethodDelete, fmt.Sprintf("/api/breaks/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = request(router, http.MethodGet, "/api/timetable/days/tuesday", nil)
	assert.Len(t, decode(t, w)["entries"], 2)
}

func TestSubscriptions(t *testing.T) {
	router, s := setupRouter(t, nil)

	w := request(router, http.MethodPut, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request", decode(t, w)["error"])

	w = request(router, http.MethodPut, "/api/subscriptions", gin.H{"endpoint": "push-endpoint-1", "p256dh": "key", "auth": "auth"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = request(router, http.MethodGet, "/api/subscriptions?endpoint=push-endpoint-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "push-endpoint-1", decode(t, w)["endpoint"])

	w = request(router, http.MethodGet, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(router, http.MethodDelete, "/api/subscriptions", gin.H{"endpoint": "push-endpoint-1"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = request(router, http.MethodGet, "/api/subscriptions?endpoint=push-endpoint-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	subs, err := s.ListSubscriptions(testContext(t))
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	router, _ := setupRouter(t, nil)
	w := request(router, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	router, _ = setupRouter(t, &webpush.Options{VAPIDPublicKey: "public-key"})
	w = request(router, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"public-key"}`, w.Body.String())
}

// testContext mirrors testing.T.Context (Go 1.24+): a context canceled when
// the test finishes.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

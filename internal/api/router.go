package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"timetable-backend/config"
	"timetable-backend/internal/mw"
	"timetable-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, schedule ScheduleSource, webpushOptions *webpush.Options, cfg config.ServerConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(mw.Logger(log), gin.Recovery())

	handler := NewHandler(s, schedule, webpushOptions, log)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	// API writes flush the whole cache, and so does any refresh that picks
	// up edits made directly in the database.
	ttl := cfg.CacheTTL()
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)
	schedule.OnChange(cacheStore.Flush)

	api := r.Group("/api")
	api.Use(rateLimiter, mw.FlushOnWrite(cacheStore))
	{
		api.GET("/timetable", caching, handler.GetTimetable)
		// Time dependent, never cached.
		api.GET("/timetable/now", handler.GetNow)
		api.GET("/timetable/days/:day", caching, handler.GetDay)

		api.GET("/slots", caching, handler.ListSlots)
		api.POST("/slots", handler.CreateSlot)
		api.PUT("/slots/:id", handler.UpdateSlot)
		api.DELETE("/slots/:id", handler.DeleteSlot)

		api.GET("/breaks", caching, handler.ListBreaks)
		api.POST("/breaks", handler.CreateBreak)
		api.DELETE("/breaks/:id", handler.DeleteBreak)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}

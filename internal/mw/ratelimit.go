package mw

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// IPRateLimiter hands out one token bucket per client address. Buckets of
// clients that stay quiet for limiterIdleTTL are evicted.
type IPRateLimiter struct {
	limiters *cache.Cache
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

// NewIPRateLimiter creates a limiter allowing r requests per second with
// burst b for every client.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: cache.New(limiterIdleTTL, limiterIdleTTL),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the bucket for ip, creating it on first use. Every call
// extends the bucket's lifetime.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if v, found := i.limiters.Get(ip); found {
		limiter := v.(*rate.Limiter)
		i.limiters.SetDefault(ip, limiter)
		return limiter
	}
	limiter := rate.NewLimiter(i.r, i.b)
	i.limiters.SetDefault(ip, limiter)
	return limiter
}

// Clients is the number of addresses currently tracked.
func (i *IPRateLimiter) Clients() int {
	return i.limiters.ItemCount()
}

// ClientIP returns the first address of ipHeader when set and present,
// falling back to gin's own detection.
func ClientIP(c *gin.Context, ipHeader string) string {
	if ipHeader != "" {
		if v := c.GetHeader(ipHeader); v != "" {
			first, _, _ := strings.Cut(v, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	return c.ClientIP()
}

// RateLimiter rejects clients that exceed r requests per second (burst b)
// with 429.
func RateLimiter(r rate.Limit, b int, ipHeader string) gin.HandlerFunc {
	limiter := NewIPRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(ClientIP(c, ipHeader)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

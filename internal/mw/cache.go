package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type snapshot struct {
	status int
	header http.Header
	body   []byte
}

func (s snapshot) replay(w gin.ResponseWriter) {
	for k, v := range s.header {
		w.Header()[k] = v
	}
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(s.status)
	w.Write(s.body)
}

// teeWriter copies everything the handler writes into buf.
type teeWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func successful(status int) bool {
	return status >= 200 && status < 300
}

// Cache serves repeated GET requests from store, keyed by path and query.
// Only 2xx responses are kept.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		// RequestURI is only set by the server; URL works for any request.
		key := c.Request.URL.RequestURI()
		if v, found := store.Get(key); found {
			v.(snapshot).replay(c.Writer)
			c.Abort()
			return
		}

		tee := &teeWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = tee
		c.Next()

		if status := tee.Status(); successful(status) {
			store.Set(key, snapshot{
				status: status,
				header: tee.Header().Clone(),
				body:   tee.buf.Bytes(),
			}, ttl)
		}
	}
}

// FlushOnWrite empties store after every successful non-GET request, since
// any write may change the timetable.
func FlushOnWrite(store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead:
			return
		}
		if successful(c.Writer.Status()) {
			store.Flush()
		}
	}
}

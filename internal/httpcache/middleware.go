package httpcache

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware short-circuits GET requests with a cached response and populates
// the cache from successful JSON responses, tagging them for invalidation.
func Middleware(svc *Service, ttl time.Duration, tags ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := Key(c.Request.URL.Path, c.Request.URL.Query())
		if entry := svc.Get(c.Request.Context(), key); entry != nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json", entry.Data)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder
		c.Header("X-Cache", "MISS")

		c.Next()

		if c.Writer.Status() == http.StatusOK && recorder.body.Len() > 0 {
			svc.Set(c.Request.Context(), key, recorder.body.Bytes(), ttl, tags)
		}
	}
}

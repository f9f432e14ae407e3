package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Report handlers accumulate response metadata (cache_hit, processing_time_ms)
// under this context key; response.JSON emits it in the envelope's meta field.
const responseMetaKey = "response_meta"

// WithResponseMeta seeds the metadata map for the request and, once the
// handler chain finishes, records the total processing time unless a handler
// already set a more precise figure.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
		meta := metaFor(c)
		if _, ok := meta["processing_time_ms"]; !ok {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit records whether the report being returned was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaFor(c)["cache_hit"] = hit
}

// SetProcessingTime records a handler-measured processing time, overriding the
// request-level figure WithResponseMeta would otherwise fill in.
func SetProcessingTime(c *gin.Context, d time.Duration) {
	metaFor(c)["processing_time_ms"] = d.Milliseconds()
}

// ExtractMeta returns the metadata accumulated for the current request, or nil
// when none was recorded.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if v, ok := c.Get(responseMetaKey); ok {
		if meta, ok := v.(map[string]interface{}); ok {
			return meta
		}
	}
	return nil
}

func metaFor(c *gin.Context) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := map[string]interface{}{}
	c.Set(responseMetaKey, meta)
	return meta
}

package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// originMatcher answers whether a request Origin may call the API. Entries
// ending in "*" match by prefix, which covers dev servers on
// "http://localhost:*"; every other entry must match exactly.
type originMatcher struct {
	exact    map[string]bool
	prefixes []string
}

func newOriginMatcher(allowedOrigins []string) *originMatcher {
	m := &originMatcher{exact: make(map[string]bool, len(allowedOrigins))}
	for _, allowed := range allowedOrigins {
		if strings.HasSuffix(allowed, "*") {
			m.prefixes = append(m.prefixes, strings.TrimSuffix(allowed, "*"))
			continue
		}
		m.exact[allowed] = true
	}
	return m
}

func (m *originMatcher) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if m.exact[origin] {
		return true
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(origin, p) {
			return true
		}
	}
	return false
}

// CORSMiddleware grants browser clients on the configured origins access to
// the API. The endpoints only see GET and POST with JSON bodies and no
// cookies, so the grant covers exactly that surface.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	matcher := newOriginMatcher(allowedOrigins)
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if matcher.allows(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// LoggerMiddleware logs requests through gin's default logger.
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware recovers from handler panics with a 500.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}

package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hupe1980/agora/core"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-Id"

// RequestID propagates an incoming X-Request-Id or assigns a fresh one, and
// echoes it on the response for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = core.NewID()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

type window struct {
	start time.Time
	count int
}

// Limiter is a small fixed-window in-memory rate limiter keyed by caller and
// path. Single-instance only; a multi-node deployment needs a shared store.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	windowSize  time.Duration
	windows     map[string]*window
	now         func() time.Time
}

// NewLimiter creates a Limiter allowing maxRequests per windowSize per key.
func NewLimiter(maxRequests int, windowSize time.Duration) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		windowSize:  windowSize,
		windows:     make(map[string]*window),
		now:         time.Now,
	}
}

// Allow reports whether another request under key fits the current window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.windowSize {
		l.windows[key] = &window{start: now, count: 1}
		return true
	}
	w.count++
	return w.count <= l.maxRequests
}

// RateLimit rejects requests exceeding the limiter's window with 429.
func RateLimit(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()
		if !l.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody("Too many requests. Slow down."))
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/valpere/pogoda/internal/widget"
	"github.com/valpere/pogoda/pkg/metrics"
)

// RequestIDHeader carries the request id in and out of the HTTP surface.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// ClientRateLimiter manages rate limits per client key (an IP address for
// HTTP, a user id for chat frontends).
type ClientRateLimiter struct {
	limiters map[string]*rateLimiterEntry
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	done     chan struct{}
	stopOnce sync.Once
}

// rateLimiterEntry holds a limiter with its last access time for cleanup
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewClientRateLimiter(r rate.Limit, b int) *ClientRateLimiter {
	rl := &ClientRateLimiter{
		limiters: make(map[string]*rateLimiterEntry),
		rate:     r,
		burst:    b,
		done:     make(chan struct{}),
	}

	// Start periodic cleanup goroutine (every 15 minutes)
	go rl.cleanupLoop()

	return rl
}

func (rl *ClientRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[key]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastAccess = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (rl *ClientRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// cleanupLoop periodically removes inactive rate limiters to prevent memory leaks
func (rl *ClientRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-1 * time.Hour))
		case <-rl.done:
			return
		}
	}
}

// cleanup removes rate limiters that haven't been accessed since cutoff
func (rl *ClientRateLimiter) cleanup(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, entry := range rl.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// RequestID assigns every request an id, reusing a well-formed incoming
// X-Request-ID. The id is stored on the gin context, echoed in the response
// header and attached to the request context for the widget.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(widget.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logging creates a request logging handler
func Logging(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		} else if status >= http.StatusBadRequest {
			event = logger.Warn()
		}

		event.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	}
}

// RateLimit rejects requests from a client IP that exceeded its budget.
// onLimited writes the 429 response; without it an empty 429 is sent.
func RateLimit(rateLimiter *ClientRateLimiter, metricsCollector *metrics.Metrics, surface string, onLimited gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimiter.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		metricsCollector.IncrementCounter(metrics.RateLimitedTotal, surface)
		if onLimited == nil {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		onLimited(c)
		c.Abort()
	}
}

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/datahub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// MessageThrottled is returned when a client exceeds its rate limit
const MessageThrottled = "Request was throttled."

// RateLimiter keeps one token bucket per client. A client may burst up to
// limit requests, refilled evenly over window.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*visitor
	limit     int
	every     rate.Limit
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RateLimiter{
		clients: make(map[string]*visitor),
		limit:   limit,
		every:   rate.Every(window / time.Duration(limit)),
		idleTTL: window * 2,
		now:     time.Now,
	}
}

// Allow reports whether a request from key may proceed and how many
// requests it has left
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, ok := rl.clients[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = v
	}
	v.lastSeen = now
	allowed := v.limiter.AllowN(now, 1)
	remaining := int(math.Max(0, math.Floor(v.limiter.TokensAt(now))))
	return allowed, remaining
}

// sweep drops clients idle for longer than idleTTL. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.idleTTL {
		return
	}
	rl.lastSweep = now
	for key, v := range rl.clients {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.clients, key)
		}
	}
}

// RateLimit limits requests per authenticated adviser, falling back to the
// client IP for anonymous requests
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		if id := c.GetString(AdviserIDKey); id != "" {
			return "adviser:" + id
		}
		return "ip:" + c.ClientIP()
	})
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining := limiter.Allow(keyFunc(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/float64(limiter.every)))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{Detail: MessageThrottled})
			return
		}
		c.Next()
	}
}

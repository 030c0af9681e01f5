package httpmiddleware

import (
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter allows each client perMinute requests per minute, refilled continuously.
// Which address counts as the client is decided by gin's ClientIP, so the engine's
// trusted proxies must be configured.
type RateLimiter struct {
	perMinute float64
	mu        sync.Mutex
	clients   map[string]*allowance
	now       func() time.Time
	calls     int
}

type allowance struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter creates a limiter. perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		perMinute: float64(perMinute),
		clients:   make(map[string]*allowance),
		now:       time.Now,
	}
}

// Middleware rejects clients over their allowance with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.perMinute <= 0 {
			c.Next()
			return
		}
		if !l.take(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Too many requests"})
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) take(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.calls++
	if l.calls%1024 == 0 {
		l.forgetIdle(now)
	}

	a, found := l.clients[client]
	if !found {
		l.clients[client] = &allowance{tokens: l.perMinute - 1, seen: now}
		return true
	}
	a.tokens = math.Min(l.perMinute, a.tokens+now.Sub(a.seen).Minutes()*l.perMinute)
	a.seen = now
	if a.tokens < 1 {
		return false
	}
	a.tokens--
	return true
}

// clients idle for a minute are back to a full allowance and need no entry
func (l *RateLimiter) forgetIdle(now time.Time) {
	for client, a := range l.clients {
		if now.Sub(a.seen) >= time.Minute {
			delete(l.clients, client)
		}
	}
}

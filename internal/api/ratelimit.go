package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	limiterCacheSize = 10000
	limiterIdleTTL   = 10 * time.Minute
)

// ipRateLimiter keeps one token bucket per client IP. Idle buckets expire
// out of the LRU, which also bounds memory.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// newIPRateLimiter allows perMinute requests per IP with a burst of the same
// size. A non-positive perMinute disables limiting.
func newIPRateLimiter(perMinute int) *ipRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &ipRateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](limiterCacheSize, nil, limiterIdleTTL),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	limiter, ok := l.limiters.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// re-adding refreshes the idle TTL
	l.limiters.Add(ip, limiter)
	l.mu.Unlock()
	return limiter.Allow()
}

// RateLimit 按客户端 IP 限流，超出返回 429。
func (h *HTTPHandler) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.authLimiter.allow(c.ClientIP()) {
			c.Next()
			return
		}
		logrus.WithFields(logrus.Fields{
			"client_ip": c.ClientIP(),
			"path":      c.Request.URL.Path,
		}).Warn("rate limit exceeded")
		c.Header("Retry-After", strconv.Itoa(int(time.Minute/time.Second)))
		ErrorResponse(c, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Too many requests, please try again later")
	}
}

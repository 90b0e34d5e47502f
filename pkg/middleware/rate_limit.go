package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	cfg      RateLimiterConfig
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}
	if config.Burst == 0 {
		config.Burst = config.RequestsPerSecond * 2
	}

	return &RateLimiter{
		cfg:      config,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (r *RateLimiter) getVisitor(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, exists := r.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(r.cfg.RequestsPerSecond), r.cfg.Burst)
		r.visitors[ip] = &visitor{limiter, r.now()}
		return limiter
	}

	v.lastSeen = r.now()
	return v.limiter
}

// Cleanup drops visitors that haven't been seen for longer than the TTL
func (r *RateLimiter) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ip, v := range r.visitors {
		if r.now().Sub(v.lastSeen) > r.cfg.TTL {
			delete(r.visitors, ip)
		}
	}
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		r.Cleanup()
	}
}

// Handler returns the middleware. A limit of 0 disables rate limiting.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	if r.cfg.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	go r.cleanupLoop()

	return func(c *gin.Context) {
		if !r.getVisitor(c.ClientIP()).Allow() {
			abort(c, http.StatusTooManyRequests, "Too many requests")
			return
		}

		c.Next()
	}
}

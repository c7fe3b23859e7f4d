// middleware/rate_limiter.go
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             *sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	skipPaths      map[string]bool
}

// NewRateLimiter builds the per-IP limiter. The cleanup loop stops with ctx.
func NewRateLimiter(ctx context.Context) *RateLimiter {
	limiter := &RateLimiter{
		ips:            make(map[string]*rate.Limiter),
		blockedIPs:     make(map[string]time.Time),
		mu:             &sync.RWMutex{},
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		blockDuration:  5 * time.Minute,
		endpointLimits: make(map[string]endpointLimit),
		skipPaths:      map[string]bool{"/health": true, "/api/ws": true},
	}

	// Code issuance and checking are the brute-force targets
	limiter.SetEndpointLimit("/api/enroll", rate.Every(2*time.Second), 5)
	limiter.SetEndpointLimit("/api/verify", rate.Every(2*time.Second), 5)
	limiter.SetEndpointLimit("/api/verify-payment", rate.Every(time.Second), 5)
	// Summaries are slow and costly upstream
	limiter.SetEndpointLimit("/api/summarize-pdf", rate.Every(10*time.Second), 3)

	go limiter.cleanupBlockedIPs(ctx)

	return limiter
}

// SetEndpointLimit overrides the default limit for a route path.
func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
}

func (r *RateLimiter) cleanupBlockedIPs(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		r.mu.Lock()
		now := time.Now()
		for ip, blockUntil := range r.blockedIPs {
			if now.After(blockUntil) {
				delete(r.blockedIPs, ip)
				// Also remove the limiter to reset its state
				delete(r.ips, ip)
			}
		}
		r.mu.Unlock()
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r.skipPaths[c.Path()] {
				return next(c)
			}
			ip := c.RealIP()

			// Check if IP is blocked and handle expired blocks
			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if time.Now().Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, "IP address blocked due to too many requests", blockUntil)
				}
				delete(r.blockedIPs, ip)
				delete(r.ips, ip)
			}
			el, exists := r.endpointLimits[c.Path()]
			r.mu.Unlock()

			limit, burst := r.defaultLimit, r.defaultBurst
			key := ip
			if exists {
				limit, burst = el.limit, el.burst
				// endpoint limits get their own bucket per IP
				key = ip + "|" + c.Path()
			}

			if !r.getLimiter(key, limit, burst).Allow() {
				blockUntil := time.Now().Add(r.blockDuration)
				r.mu.Lock()
				r.blockedIPs[ip] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, "Too many requests", blockUntil)
			}

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, msg string, retryAfter time.Time) error {
	return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
		"success":    false,
		"error":      msg,
		"retryAfter": retryAfter.Format(time.RFC3339),
	})
}

func (r *RateLimiter) getLimiter(key string, limit rate.Limit, burst int) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, exists := r.ips[key]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		r.ips[key] = limiter
	}
	return limiter
}

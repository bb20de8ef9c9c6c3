package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/boardadmin/boardadmin/internal/metrics"
)

// RateLimiter is a sliding window counter keyed by client IP
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
// Rejected hits are not recorded.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	recent := rl.prune(key, now)
	if len(recent) >= rl.limit {
		return false
	}

	rl.hits[key] = append(recent, now)
	return true
}

// prune drops hits older than the window and forgets idle keys
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)

	hits := rl.hits[key]
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	hits = hits[i:]

	if len(hits) == 0 {
		delete(rl.hits, key)
	}
	return hits
}

// Sweep removes every key without hits inside the window
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key := range rl.hits {
		rl.prune(key, now)
	}
}

// Len returns the number of tracked keys
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.hits)
}

// RateLimit rejects requests with 429 once a client exceeds the limiter.
// bucket labels the log line and metric.
func RateLimit(bucket string, limiter *RateLimiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				slog.Warn("rate limit exceeded", "bucket", bucket, "ip", ip, "path", r.URL.Path)
				metrics.RateLimited.WithLabelValues(bucket).Inc()
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next(w, r)
		}
	}
}

// RateLimitAuth limits login and signup attempts to 5 per 15 minutes per IP
func RateLimitAuth() func(http.HandlerFunc) http.HandlerFunc {
	limiter := NewRateLimiter(5, 15*time.Minute)
	go sweepEvery(limiter, 5*time.Minute)
	return RateLimit("auth", limiter)
}

// RateLimitRecovery limits the mail-sending recovery forms to 3 per hour per IP
func RateLimitRecovery() func(http.HandlerFunc) http.HandlerFunc {
	limiter := NewRateLimiter(3, time.Hour)
	go sweepEvery(limiter, 10*time.Minute)
	return RateLimit("recovery", limiter)
}

func sweepEvery(limiter *RateLimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		limiter.Sweep()
	}
}

// clientIP prefers proxy headers and falls back to RemoteAddr without the port
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter provides rate limiting using a sliding window algorithm.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // max requests per window
	duration time.Duration // window duration
	cleanup  time.Duration // how often to clean old entries
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a new rate limiter.
// limit: maximum requests allowed per duration
// duration: the time window for counting requests
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		cleanup:  duration * 2, // cleanup entries older than 2x duration
	}
	go l.cleanupLoop()
	return l
}

// Allow checks if a request from the given key should be allowed.
// Returns true if allowed, false if rate limited.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]

	// If no window exists or window expired, create new one
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{
			count:     1,
			expiresAt: now.Add(l.duration),
		}
		return true
	}

	// Window still active - check limit
	if w.count >= l.limit {
		return false
	}

	w.count++
	return true
}

// Remaining returns how many requests are left for this key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]

	if !exists || now.After(w.expiresAt) {
		return l.limit
	}

	remaining := l.limit - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears the rate limit for a specific key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// cleanupLoop periodically removes expired entries to prevent memory leaks.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (comma-separated list, first is client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}

// ScanLimiter provides specialized rate limiting for duplicate scans,
// which walk every active feedback item. It tracks both IP-based and
// actor-based limits to prevent:
// - Distributed hammering from multiple IPs
// - A single actor saturating the scan from many addresses
type ScanLimiter struct {
	ipLimiter    *Limiter
	actorLimiter *Limiter
}

// NewScanLimiter creates a limiter configured for duplicate-scan protection.
// Defaults: 30 scans per IP per minute, 10 scans per actor per minute.
func NewScanLimiter() *ScanLimiter {
	return &ScanLimiter{
		ipLimiter:    New(30, time.Minute), // 30 scans per minute per IP
		actorLimiter: New(10, time.Minute), // 10 scans per minute per actor
	}
}

// NewScanLimiterWithConfig creates a scan limiter with custom limits.
func NewScanLimiterWithConfig(ipLimit int, ipDuration time.Duration, actorLimit int, actorDuration time.Duration) *ScanLimiter {
	return &ScanLimiter{
		ipLimiter:    New(ipLimit, ipDuration),
		actorLimiter: New(actorLimit, actorDuration),
	}
}

// Check verifies if a duplicate scan should be allowed.
// Returns (allowed, reason) where reason explains why it was blocked.
func (sl *ScanLimiter) Check(r *http.Request, actorID string) (bool, string) {
	ip := ClientIP(r)

	// Check IP limit first
	if !sl.ipLimiter.Allow(ip) {
		return false, "Too many duplicate scans. Please wait a minute before trying again."
	}

	// Check actor limit (only if an actor is identified)
	if actorID != "" {
		if !sl.actorLimiter.Allow(strings.TrimSpace(actorID)) {
			return false, "Too many duplicate scans for this account. Please wait a minute."
		}
	}

	return true, ""
}

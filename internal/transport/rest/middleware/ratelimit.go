package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yasserelgammal/rate-limiter/limiter"
	"github.com/yasserelgammal/rate-limiter/store"

	"funnelworks/internal/config"
)

// RateLimiter throttles requests per client IP with a token bucket
type RateLimiter struct {
	bucket  *limiter.TokenBucket
	trusted []*net.IPNet
}

// NewRateLimiter creates a per-IP limiter from config
func NewRateLimiter(cfg config.RateLimitConfig) (*RateLimiter, error) {
	trusted, err := parseProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	bucket, err := limiter.NewTokenBucket(
		limiter.Config{
			Rate:     int64(cfg.PerSecond),
			Duration: time.Second,
			Burst:    int64(cfg.Burst),
		},
		store.NewMemoryStore(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}
	return &RateLimiter{bucket: bucket, trusted: trusted}, nil
}

func parseProxies(entries []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, e := range entries {
		if !strings.Contains(e, "/") {
			if ip := net.ParseIP(e); ip != nil && ip.To4() != nil {
				e += "/32"
			} else {
				e += "/128"
			}
		}
		_, n, err := net.ParseCIDR(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// Limit rejects requests over the per-IP budget with 429
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if !l.bucket.Allow(l.ClientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the remote address host. X-Forwarded-For is only read when
// the peer is a trusted proxy, and then the right-most untrusted hop is used.
func (l *RateLimiter) ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !l.isTrusted(host) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !l.isTrusted(hop) {
			return hop
		}
		host = hop
	}
	return host
}

func (l *RateLimiter) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range l.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

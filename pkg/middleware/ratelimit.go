package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipBuckets hands out one token bucket per client IP and evicts buckets
// that have sat idle longer than ttl.
type ipBuckets struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	clock   func() time.Time // injectable for tests
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPBuckets(rps float64, burst int, ttl time.Duration) *ipBuckets {
	p := &ipBuckets{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		clock:   time.Now,
	}
	go p.janitor()
	return p
}

// take returns the limiter for ip, creating one on first sight, and
// refreshes the idle timer.
func (p *ipBuckets) take(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.buckets[ip] = b
	}
	b.lastSeen = p.clock()
	return b.limiter
}

func (p *ipBuckets) janitor() {
	t := time.NewTicker(p.ttl)
	defer t.Stop()
	for range t.C {
		p.sweep()
	}
}

// sweep drops every bucket idle for longer than the TTL.
func (p *ipBuckets) sweep() {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.clock().Add(-p.ttl)
	for ip, b := range p.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(p.buckets, ip)
		}
	}
}

func (p *ipBuckets) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets)
}

// RateLimit enforces a per-IP token bucket of rps sustained requests with
// the given burst, answering 429 once the bucket is empty. Mounted on
// credential endpoints (login, contact form) rather than globally.
func RateLimit(rps float64, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	const idleTTL = 3 * time.Minute
	pool := newIPBuckets(rps, burst, idleTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !pool.take(ip).Allow() {
				logger.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    "RATE_LIMITED",
					"message": "too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP resolves the client address, trusting X-Forwarded-For first,
// then X-Real-IP, then the socket peer. Unparseable header values are
// skipped rather than trusted.
func ClientIP(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			return ip.String()
		}
	}

	if ip := net.ParseIP(r.Header.Get("X-Real-IP")); ip != nil {
		return ip.String()
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one token bucket per client IP and forgets idle clients.
type limiterStore struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

func newLimiterStore(limit rate.Limit, burst int, idleTTL time.Duration) *limiterStore {
	return &limiterStore{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[ip] = c
	}
	c.lastSeen = s.now()
	return c.limiter
}

func (s *limiterStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	for ip, c := range s.clients {
		if c.lastSeen.Before(cutoff) {
			delete(s.clients, ip)
		}
	}
}

func (s *limiterStore) run(ctx context.Context) {
	t := time.NewTicker(s.idleTTL)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep()
		}
	}
}

// RateLimitConfig describes a per-IP token bucket. Requests per Window are
// refilled evenly; Burst is the bucket size. Forwarding headers are honoured
// only on connections from TrustedProxies.
type RateLimitConfig struct {
	Requests       int
	Window         time.Duration
	Burst          int
	TrustedProxies []string
}

// RateLimit rejects callers that exceed cfg with 429. The sweeper goroutine that
// evicts idle clients stops when ctx is cancelled.
func RateLimit(ctx context.Context, cfg RateLimitConfig, log *slog.Logger) func(http.Handler) http.Handler {
	limit := rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds())
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.Requests
	}
	trusted := ParseCIDRs(cfg.TrustedProxies, log)
	store := newLimiterStore(limit, cfg.Burst, max(cfg.Window, time.Minute))
	go store.run(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r, trusted)
			lim := store.get(ip)
			if !lim.Allow() {
				retry := math.Ceil(1 / float64(lim.Limit()))
				w.Header().Set("Retry-After", strconv.Itoa(int(retry)))
				log.Warn("rate limit exceeded", slog.String("ip", ip), slog.String("path", r.URL.Path))
				reject(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the address of the caller. The connection's remote address
// is used as is unless it lies inside trusted; then X-Forwarded-For is walked
// from the right, skipping trusted hops, and X-Real-IP is the fallback.
func ClientIP(r *http.Request, trusted []netip.Prefix) string {
	host := remoteHost(r)
	remote, err := netip.ParseAddr(host)
	if err != nil || !inPrefixes(trusted, remote) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !inPrefixes(trusted, addr) {
				return addr.Unmap().String()
			}
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	return host
}

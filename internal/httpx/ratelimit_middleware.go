package httpx

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10_000
	clientIdleTTL     = 5 * time.Minute
)

// RateLimitMiddleware applies a token bucket per client address. Idle
// clients expire from a bounded LRU.
type RateLimitMiddleware struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	exempt   map[string]bool
	trusted  []netip.Prefix
}

func NewRateLimitMiddleware(rps float64, burst int, exemptPaths ...string) *RateLimitMiddleware {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimitMiddleware{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
		rate:     rate.Limit(rps),
		burst:    burst,
		exempt:   make(map[string]bool, len(exemptPaths)),
	}
	for _, p := range exemptPaths {
		rl.exempt[p] = true
	}
	return rl
}

// Close drops every tracked limiter.
func (rl *RateLimitMiddleware) Close() {
	rl.limiters.Purge()
}

func (rl *RateLimitMiddleware) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limiters.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters.Add(key, limiter)
	return limiter
}

// TrustProxies lists the peers (addresses or CIDR prefixes) whose
// X-Forwarded-For header is believed. Unparseable entries are ignored.
func (rl *RateLimitMiddleware) TrustProxies(entries ...string) {
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if p, err := netip.ParsePrefix(e); err == nil {
			rl.trusted = append(rl.trusted, p.Masked())
		} else if a, err := netip.ParseAddr(e); err == nil {
			rl.trusted = append(rl.trusted, netip.PrefixFrom(a, a.BitLen()))
		}
	}
}

func (rl *RateLimitMiddleware) isTrusted(host string) bool {
	a, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// clientKey is the peer address. Behind a trusted proxy it is the nearest
// untrusted hop of X-Forwarded-For, read right to left.
func (rl *RateLimitMiddleware) clientKey(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" || !rl.isTrusted(peer) {
		return peer
	}
	hops := strings.Split(forwarded, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop != "" && !rl.isTrusted(hop) {
			return hop
		}
	}
	if first := strings.TrimSpace(hops[0]); first != "" {
		return first
	}
	return peer
}

func (rl *RateLimitMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		if !rl.getLimiter(rl.clientKey(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			JSONError(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

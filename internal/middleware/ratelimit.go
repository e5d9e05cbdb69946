// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// cleanupInterval is how often idle clients are dropped.
const cleanupInterval = 5 * time.Minute

// clientLimiter is the token bucket and last access time for one client.
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter provides per-IP rate limiting with a token bucket per client.
// A client may spend limit tokens at once; they refill evenly over window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   int
	window  time.Duration
	stopCh  chan struct{}
}

// NewRateLimiter creates a rate limiter that allows limit requests per window.
// It starts a background goroutine to clean up idle entries.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   limit,
		window:  window,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup(time.Now())
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// every returns the refill interval for one token.
func (rl *RateLimiter) every() rate.Limit {
	return rate.Every(rl.window / time.Duration(rl.limit))
}

// allow checks whether the given key is within the rate limit.
func (rl *RateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.every(), rl.limit)}
		rl.clients[key] = c
	}
	c.lastAccess = now
	rl.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// cleanup removes clients idle for longer than one window. An idle client's
// bucket is full again, so dropping it changes nothing.
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, c := range rl.clients {
		if now.Sub(c.lastAccess) > rl.window {
			delete(rl.clients, key)
		}
	}
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !rl.allow(ip) {
			retry := int(math.Ceil((rl.window / time.Duration(rl.limit)).Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
			slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DefaultTrustedProxies are the peers whose forwarding headers are
// believed when nothing else is configured: loopback and private ranges,
// where a reverse proxy in the same host or network sits.
var DefaultTrustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("fc00::/7"),
}

var (
	proxyMu        sync.RWMutex
	trustedProxies = DefaultTrustedProxies
)

// SetTrustedProxies replaces the set of peers allowed to supply
// X-Forwarded-For and X-Real-IP. An empty set ignores those headers.
func SetTrustedProxies(prefixes []netip.Prefix) {
	proxyMu.Lock()
	defer proxyMu.Unlock()
	trustedProxies = prefixes
}

func isTrustedProxy(a netip.Addr) bool {
	proxyMu.RLock()
	defer proxyMu.RUnlock()
	for _, p := range trustedProxies {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// ParseTrustedProxies parses a comma-separated list of IPs and CIDRs.
func ParseTrustedProxies(s string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if strings.Contains(f, "/") {
			p, err := netip.ParsePrefix(f)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", f, err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(f)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", f, err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

// parseIP accepts a bare IP address and normalizes it: IPv4-mapped
// addresses are unmapped and zones dropped.
func parseIP(s string) (netip.Addr, bool) {
	a, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return a.Unmap().WithZone(""), true
}

// ClientIP returns the client's IP address. Forwarding headers are only
// read when the direct peer is a trusted proxy. X-Forwarded-For is walked
// from the right, skipping trusted hops, so a client cannot pick its own
// address by prepending entries. The result is always a valid IP, or empty
// when RemoteAddr is not one.
func ClientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	peer, ok := parseIP(host)
	if !ok {
		return ""
	}
	if !isTrustedProxy(peer) {
		return peer.String()
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		client := peer
		for i := len(hops) - 1; i >= 0; i-- {
			a, ok := parseIP(hops[i])
			if !ok {
				break
			}
			client = a
			if !isTrustedProxy(a) {
				break
			}
		}
		return client.String()
	}

	if a, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
		return a.String()
	}
	return peer.String()
}

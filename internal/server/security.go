package server

import (
	"crypto/subtle"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/ItemForge_Go/internal/handler"
	"github.com/osse101/ItemForge_Go/internal/logger"
)

// AuthMiddleware validates the API key on every non-public path
func AuthMiddleware(apiKey string, proxies []netip.Prefix, tracker *ActivityTracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(HeaderAPIKey)
			if !keysMatch(providedKey, apiKey) {
				ip := extractIP(r, proxies)
				tracker.RecordFailedAuth(ip)

				logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
					"path", r.URL.Path,
					"has_key", providedKey != "",
					"ip", ip)

				http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminMiddleware additionally requires the admin key when one is configured.
// With no admin key the API key alone grants admin access.
func AdminMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if adminKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !keysMatch(r.Header.Get(HeaderAdminKey), adminKey) {
				logger.FromContext(r.Context()).Warn(LogMsgAdminDenied, "path", r.URL.Path)
				http.Error(w, ErrMsgForbidden, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// keysMatch compares in constant time; an empty key never matches
func keysMatch(provided, expected string) bool {
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

func isPublicPath(path string) bool {
	for _, p := range PublicPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RequestSizeLimitMiddleware limits request body size
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// windowCount is one key's tally inside the current fixed window
type windowCount struct {
	start time.Time
	n     int
}

// ActivityTracker keeps per-key request and failed-auth tallies over fixed windows.
// Tallies live in expiring LRUs, so a flood of distinct addresses evicts old keys
// instead of growing memory.
type ActivityTracker struct {
	mu       sync.Mutex
	requests *expirable.LRU[string, *windowCount]
	failures *expirable.LRU[string, *windowCount]

	window          time.Duration
	budget          int
	failedAuthAlert int
	now             func() time.Time
}

// NewActivityTracker creates a tracker. requestsPerWindow <= 0 selects DefaultRequestsPerWindow.
func NewActivityTracker(requestsPerWindow int) *ActivityTracker {
	if requestsPerWindow <= 0 {
		requestsPerWindow = DefaultRequestsPerWindow
	}
	return &ActivityTracker{
		requests:        expirable.NewLRU[string, *windowCount](DefaultTrackedKeys, nil, DefaultRateWindow),
		failures:        expirable.NewLRU[string, *windowCount](DefaultTrackedKeys, nil, DefaultRateWindow),
		window:          DefaultRateWindow,
		budget:          requestsPerWindow,
		failedAuthAlert: DefaultFailedAuthAlert,
		now:             time.Now,
	}
}

// bump increments key's tally, opening a new window when the last one has ended.
// Caller holds mu.
func (a *ActivityTracker) bump(cache *expirable.LRU[string, *windowCount], key string) *windowCount {
	now := a.now()
	c, ok := cache.Get(key)
	if !ok || now.Sub(c.start) >= a.window {
		c = &windowCount{start: now}
		cache.Add(key, c)
	}
	c.n++
	return c
}

// RecordFailedAuth tallies a failed authentication and alerts past the threshold
func (a *ActivityTracker) RecordFailedAuth(ip string) {
	a.mu.Lock()
	n := a.bump(a.failures, ip).n
	a.mu.Unlock()

	if n >= a.failedAuthAlert {
		slog.Warn(SecurityAlertFailedAuth, "ip", ip, "count", n)
	}
}

// FailedAuths returns the failed authentications recorded for ip in the current window
func (a *ActivityTracker) FailedAuths(ip string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.failures.Peek(ip); ok && a.now().Sub(c.start) < a.window {
		return c.n
	}
	return 0
}

// Allow tallies a request for key. Over budget it returns false and how long
// until the window resets.
func (a *ActivityTracker) Allow(key string) (bool, time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.bump(a.requests, key)
	if c.n <= a.budget {
		return true, 0
	}
	if c.n%100 == 0 {
		slog.Warn(SecurityAlertHighRate, "key", key, "count_in_window", c.n)
	}
	return false, c.start.Add(a.window).Sub(a.now())
}

// RateLimitMiddleware charges each request to its client address and, when the
// request names a caller, to that caller as well. Either budget running out rejects it.
func RateLimitMiddleware(proxies []netip.Prefix, tracker *ActivityTracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			keys := []string{rateKeyIP + extractIP(r, proxies)}
			if caller := r.Header.Get(handler.HeaderCallerID); caller != "" {
				keys = append(keys, rateKeyCaller+caller)
			}

			for _, key := range keys {
				if ok, retry := tracker.Allow(key); !ok {
					w.Header().Set(HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retry.Seconds()))))
					http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ParseTrustedProxies accepts bare addresses and CIDR ranges. Unparseable
// entries are logged and skipped.
func ParseTrustedProxies(entries []string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range entries {
		if p, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		slog.Warn(LogMsgBadTrustedProxy, "entry", entry)
	}
	return prefixes
}

// extractIP gets the client IP. X-Forwarded-For is only trusted when the direct
// peer is a trusted proxy, and then its rightmost hop is used.
func extractIP(r *http.Request, proxies []netip.Prefix) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	forwarded := r.Header.Get(HeaderForwardedFor)
	if forwarded == "" || !isTrustedPeer(remoteIP, proxies) {
		return remoteIP
	}
	hops := strings.Split(forwarded, ",")
	return strings.TrimSpace(hops[len(hops)-1])
}

func isTrustedPeer(ip string, proxies []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderContentType, HeaderValueNoSniff)
			w.Header().Set(HeaderFrameOptions, HeaderValueDeny)
			w.Header().Set(HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin)
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/novathreads/storefront-backend/api/responses"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/logger"
	"github.com/novathreads/storefront-backend/pkg/metrics"
	"github.com/novathreads/storefront-backend/pkg/ratelimit"
)

// RateLimitPolicy defines the throttling parameters for a traffic surface.
type RateLimitPolicy struct {
	name    string
	window  time.Duration
	limit   int
	message string
	trusted []netip.Prefix
}

// NewRateLimitPolicy builds a per-client-IP fixed-window policy. message is
// returned to throttled clients.
func NewRateLimitPolicy(name string, window time.Duration, limit int, message string) RateLimitPolicy {
	return RateLimitPolicy{
		name:    strings.ToLower(strings.TrimSpace(name)),
		window:  window,
		limit:   limit,
		message: message,
	}
}

// TrustProxies returns a copy of p that reads the client address from
// X-Forwarded-For when the peer is one of trusted.
func (p RateLimitPolicy) TrustProxies(trusted []netip.Prefix) RateLimitPolicy {
	p.trusted = append([]netip.Prefix(nil), trusted...)
	return p
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "default"
	}
	return p.name
}

// RateLimit enforces a per-IP request budget for each window.
func RateLimit(policy RateLimitPolicy, store ratelimit.Store, m *metrics.HTTPMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r, policy.trusted)
			key := store.RateLimitKey(policy.normalizedName(), ip)

			count, err := store.IncrWithTTL(ctx, key, policy.window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}

			remaining := int64(policy.limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("RateLimit-Limit", strconv.Itoa(policy.limit))
			w.Header().Set("RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(policy.limit) {
				m.IncRateLimited(policy.normalizedName())
				respondRateLimited(ctx, logg, w, store, key, policy, ip, count)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, store ratelimit.Store, key string, policy RateLimitPolicy, ip string, count int64) {
	retryAfter := policy.window
	if ttl, err := store.TTL(ctx, key); err == nil && ttl > 0 {
		retryAfter = ttl
	}
	w.Header().Set("Retry-After", strconv.Itoa(int((retryAfter+time.Second-1)/time.Second)))

	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"policy":         policy.normalizedName(),
			"ip":             ip,
			"attempts":       count,
			"limit":          policy.limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, policy.message))
}

// clientIP returns the peer address unless the peer is a trusted proxy. Then
// X-Forwarded-For is walked from the right and the first untrusted hop wins;
// hops left of it are client-controlled and ignored.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	if r == nil {
		return ""
	}
	peer, err := parseAddr(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	if !isTrusted(peer, trusted) {
		return peer.String()
	}

	header := r.Header.Get("X-Forwarded-For")
	if header == "" {
		if addr, err := parseAddr(r.Header.Get("X-Real-IP")); err == nil {
			return addr.String()
		}
		return peer.String()
	}

	client := peer
	hops := strings.Split(header, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := parseAddr(hops[i])
		if err != nil {
			break
		}
		client = hop
		if !isTrusted(hop, trusted) {
			break
		}
	}
	return client.String()
}

// parseAddr accepts a bare IP or host:port.
func parseAddr(raw string) (netip.Addr, error) {
	raw = strings.TrimSpace(raw)
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, err
	}
	return addr.Unmap(), nil
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

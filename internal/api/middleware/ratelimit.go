package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hackhub-dev/server/internal/api/problem"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/config"
	"golang.org/x/time/rate"
)

type RateLimitTier string

const (
	TierPublic RateLimitTier = "public"
	TierAuth   RateLimitTier = "auth"
	TierAdmin  RateLimitTier = "admin"
)

const (
	limiterTTL      = 15 * time.Minute
	cleanupInterval = 5 * time.Minute
)

// RateLimiter throttles clients per tier with token buckets. Anonymous callers are
// keyed by client IP, authenticated callers by user id.
type RateLimiter struct {
	cfg  config.RateLimitConfig
	env  string
	now  func() time.Time
	mu   sync.Mutex
	seen map[string]*limiterEntry
	stop chan struct{}
	once sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig, env string) *RateLimiter {
	rl := &RateLimiter{
		cfg:  cfg,
		env:  env,
		now:  time.Now,
		seen: make(map[string]*limiterEntry),
		stop: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Middleware must run after Authenticate so the caller's tier is known.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tier, key := rl.classify(r)
		limiter := rl.limiter(tier, key)
		if limiter == nil || limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Retry-After", strconv.Itoa(int(rl.refill(tier).Seconds())))
		problem.Write(w, r, http.StatusTooManyRequests, "Too many requests, please try again later.", nil, rl.env)
	})
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) classify(r *http.Request) (RateLimitTier, string) {
	principal, ok := PrincipalFromContext(r.Context())
	switch {
	case !ok:
		return TierPublic, clientKey(r, rl.cfg.TrustedProxyCIDRs)
	case principal.Role == auth.RoleAdmin:
		return TierAdmin, principal.UserID
	default:
		return TierAuth, principal.UserID
	}
}

func (rl *RateLimiter) perMinute(tier RateLimitTier) int {
	switch tier {
	case TierAdmin:
		return rl.cfg.AdminPerMinute
	case TierAuth:
		return rl.cfg.AuthPerMinute
	default:
		return rl.cfg.PublicPerMinute
	}
}

func (rl *RateLimiter) refill(tier RateLimitTier) time.Duration {
	limit := rl.perMinute(tier)
	if limit <= 0 {
		return 0
	}
	interval := time.Minute / time.Duration(limit)
	if interval < time.Second {
		return time.Second
	}
	return interval
}

func (rl *RateLimiter) limiter(tier RateLimitTier, key string) *rate.Limiter {
	limit := rl.perMinute(tier)
	if limit <= 0 {
		return nil
	}

	lookup := string(tier) + ":" + key

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if entry, ok := rl.seen[lookup]; ok {
		entry.lastSeen = rl.now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(limit)), limit)
	rl.seen[lookup] = &limiterEntry{limiter: limiter, lastSeen: rl.now()}
	return limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, entry := range rl.seen {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(rl.seen, key)
		}
	}
}

// clientKey trusts X-Forwarded-For only from configured proxies.
func clientKey(r *http.Request, trustedProxyCIDRs []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	if isTrustedProxy(remoteIP, trustedProxyCIDRs) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
	}
	return remoteIP
}

func isTrustedProxy(ip string, trustedCIDRs []string) bool {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}
	for _, cidrStr := range trustedCIDRs {
		_, cidr, err := net.ParseCIDR(cidrStr)
		if err != nil {
			continue
		}
		if cidr.Contains(parsedIP) {
			return true
		}
	}
	return false
}

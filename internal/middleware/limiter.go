package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"daztao-be/internal/metrics"
	"daztao-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Admin login, checkout submission, payment callbacks
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Admin back-office
	limitAdmin = rate.Limit(20)
	burstAdmin = 40

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per identity and tier.
type RateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	internalKey string
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewRateLimiter starts the background cleanup loop; call Stop to end it.
// Requests carrying X-Service-Auth equal to internalKey get the internal tier.
func NewRateLimiter(internalKey string) *RateLimiter {
	rl := &RateLimiter{
		visitors:    make(map[string]*visitor),
		internalKey: internalKey,
		stop:        make(chan struct{}),
	}
	go rl.cleanupVisitors()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// getVisitor retrieves or creates a rate limiter for the given key.
func (rl *RateLimiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		rl.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, key)
		}
	}
}

// Middleware rejects requests over their tier's budget with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := rl.resolveRateTier(r)
		key := requestIdentity(r, tier) + ":" + tier

		if !rl.getVisitor(key, limit, burst).Allow() {
			metrics.Default.Counter(metrics.RateLimitedRequests).Inc()
			utils.WriteJSONError(w, "Too many requests, please slow down", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIdentity picks the bucket owner. The client-chosen device id is not
// trusted on the strict tier; those routes are keyed by address.
func requestIdentity(r *http.Request, tier string) string {
	if sub, ok := utils.GetAdminSubject(r.Context()); ok {
		return "admin:" + sub
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" && tier != "strict" {
		return "device:" + deviceID
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

// resolveRateTier determines which rate limit policy applies to the request.
func (rl *RateLimiter) resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	if rl.internalKey != "" && r.Header.Get("X-Service-Auth") == rl.internalKey {
		return limitInternal, burstInternal, "internal"
	}

	if isStrictRoute(r) {
		return limitStrict, burstStrict, "strict"
	}

	if utils.IsAdmin(r.Context()) {
		return limitAdmin, burstAdmin, "admin"
	}

	return limitGeneral, burstGeneral, "general"
}

func isStrictRoute(r *http.Request) bool {
	path := r.URL.Path
	switch {
	case path == "/admin/login":
		return true
	case strings.HasPrefix(path, "/webhooks/"), strings.HasPrefix(path, "/payments/"):
		return true
	case path == "/orders" && r.Method == http.MethodPost:
		return true
	}
	return false
}

package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"irokart-be/internal/apperr"
	"irokart-be/internal/transport"
	"irokart-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Auth / payment (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Storefront pages fan out several reads per view
	limitFrontend = rate.Limit(20)
	burstFrontend = 40

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

var strictPrefixes = []string{"/api/auth/", "/api/payments/"}

// gateway callbacks arrive in bursts from a few addresses
var strictExempt = map[string]bool{"/api/payments/webhook": true}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	internalKey string

	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewRateLimiter(internalKey string) *RateLimiter {
	return &RateLimiter{
		internalKey: internalKey,
		visitors:    make(map[string]*visitor),
	}
}

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

// Cleanup drops visitors idle for longer than idle, every interval, until ctx ends.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict(idle)
		}
	}
}

func (rl *RateLimiter) evict(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if time.Since(v.lastSeen) > idle {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := rl.resolveRateTier(r)

		var identity string
		if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
			identity = "user:" + userID
		} else if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
			identity = "device:" + deviceID
		} else {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			identity = "ip:" + ip
		}

		// same identity gets separate quotas per tier
		key := fmt.Sprintf("%s:%s", identity, tier)

		if !rl.getVisitor(key, limit, burst).Allow() {
			transport.WriteError(w, r, apperr.New(apperr.TooManyRequests, "too many requests"))
			return
		}

		if tier == "internal" {
			r = r.WithContext(utils.WithInternalRequest(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	if rl.internalKey != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Service-Auth")), []byte(rl.internalKey)) == 1 {
		return limitInternal, burstInternal, "internal"
	}

	for _, prefix := range strictPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) && !strictExempt[r.URL.Path] {
			return limitStrict, burstStrict, "strict"
		}
	}

	if r.Header.Get("X-Client-Type") == "frontend-heavy" {
		return limitFrontend, burstFrontend, "frontend"
	}

	return limitGeneral, burstGeneral, "general"
}

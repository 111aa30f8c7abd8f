package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tourly/utils"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore holds one token bucket per client IP.
type rateLimiterStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	perMinute int
	lastSweep time.Time
}

func newRateLimiterStore(perMinute int) *rateLimiterStore {
	if perMinute <= 0 {
		perMinute = 100
	}
	return &rateLimiterStore{visitors: make(map[string]*visitor), perMinute: perMinute}
}

// getLimiter returns the limiter for ip, creating it on first sight. Idle entries are
// swept at most once per TTL.
func (s *rateLimiterStore) getLimiter(ip string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > limiterIdleTTL {
		for key, v := range s.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(s.visitors, key)
			}
		}
		s.lastSweep = now
	}

	v, exists := s.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute)}
		s.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// RateLimitMiddleware limits each client IP to perMinute requests per minute.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	store := newRateLimiterStore(perMinute)
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !store.getLimiter(ip, time.Now()).Allow() {
			RequestLogger(c).Warn("Rate limit exceeded", zap.String("ip", ip))
			utils.JSONErrorWithCode(c, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded. Try again later.", "", true)
			return
		}
		c.Next()
	}
}

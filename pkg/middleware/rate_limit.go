package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/pkg/metrics"
)

const msgRateLimited = "Too many requests, please slow down"

// limiterStore holds one token bucket per key.
type limiterStore struct {
	m     sync.Map // map[string]*rate.Limiter
	rps   float64
	burst int
}

func (s *limiterStore) get(key string) *rate.Limiter {
	if v, ok := s.m.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := s.m.LoadOrStore(key, rate.NewLimiter(rate.Limit(s.rps), s.burst))
	return v.(*rate.Limiter)
}

const callerKey = "rate_limit_caller"

// IdentifyCaller records the user id of a validly signed bearer token for the
// limiters mounted after it. It never rejects; Authenticate does that on the
// protected routes.
func IdentifyCaller(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearerToken(c.GetHeader("Authorization")); raw != "" && ver != nil {
			if claims, err := ver.Verify(c.Request.Context(), raw); err == nil {
				c.Set(callerKey, claims.UserID())
			}
		}
		c.Next()
	}
}

// rateLimitKey prefers the calling user so clients behind one NAT do not
// share a bucket; otherwise the client IP.
func rateLimitKey(c *gin.Context) string {
	if id := Identity(c); id != nil && id.ID != "" {
		return "user:" + id.ID
	}
	if uid := c.GetString(callerKey); uid != "" {
		return "user:" + uid
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func rejectRateLimited(c *gin.Context, limiter, retryAfter string) {
	c.Header("Retry-After", retryAfter)
	metrics.RateLimitRejected.WithLabelValues(limiter).Inc()
	abort(c, apperr.RateLimited(msgRateLimited), "")
}

// RateLimitMiddleware enforces an in-process token bucket per key.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := &limiterStore{rps: rps, burst: burst}
	return func(c *gin.Context) {
		if !store.get(rateLimitKey(c)).Allow() {
			rejectRateLimited(c, "memory", "1")
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}

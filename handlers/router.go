package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/mamacare/mamacare-api/internal/clinics"
	"github.com/mamacare/mamacare-api/internal/config"
	"github.com/mamacare/mamacare-api/internal/content"
	"github.com/mamacare/mamacare-api/internal/forum"
	"github.com/mamacare/mamacare-api/internal/reminders"
	"github.com/mamacare/mamacare-api/internal/users"
	"github.com/mamacare/mamacare-api/internal/wellness"
	"github.com/mamacare/mamacare-api/pkg/middleware"
)

// Deps carries everything the HTTP layer talks to.
type Deps struct {
	Config    *config.Config
	Users     *users.Service
	Wellness  *wellness.Service
	Reminders *reminders.Service
	Forum     *forum.Service
	Clinics   *clinics.Service
	Content   *content.Service

	Verifier  middleware.Verifier
	Blacklist middleware.RevocationChecker
	// Redis backs the shared rate limiter when RATE_LIMIT_USE_REDIS is set.
	Redis *redis.Client

	Checks   map[string]Check
	Gatherer prometheus.Gatherer
	Now      func() time.Time
}

// NewRouter builds the gin engine: operational endpoints at the root and the
// resource API under /api.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(cfg.Server.CORSOrigin), middleware.RequestLogger(), middleware.Metrics())

	if cfg.RateLimit.Enabled {
		r.Use(middleware.IdentifyCaller(d.Verifier))
		if cfg.RateLimit.UseRedis && d.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(d.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	NewOpsHandler(d.Checks, d.Gatherer).Register(r)
	RegisterSwagger(r)

	now := d.Now
	if now == nil {
		now = time.Now
	}
	auth := middleware.Authenticate(d.Verifier, d.Users, d.Blacklist)
	admin := middleware.RequireAdmin()

	api := r.Group("/api")
	NewUserHandler(d.Users).Register(api, auth)
	NewWellnessHandler(d.Wellness).Register(api, auth)
	NewReminderHandler(d.Reminders).Register(api, auth)
	NewForumHandler(d.Forum).Register(api, auth)
	NewClinicHandler(d.Clinics).Register(api, auth, admin)
	NewContentHandler(d.Content).Register(api, auth, admin)
	NewCalculatorHandler(now).Register(api)

	return r
}

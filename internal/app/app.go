// Package app assembles the services and the HTTP router from a document
// database and the optional Redis and object-storage backends.
package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/mamacare/mamacare-api/handlers"
	"github.com/mamacare/mamacare-api/internal/clinics"
	"github.com/mamacare/mamacare-api/internal/config"
	"github.com/mamacare/mamacare-api/internal/content"
	"github.com/mamacare/mamacare-api/internal/forum"
	"github.com/mamacare/mamacare-api/internal/reminders"
	"github.com/mamacare/mamacare-api/internal/sessions"
	"github.com/mamacare/mamacare-api/internal/storage"
	"github.com/mamacare/mamacare-api/internal/store"
	"github.com/mamacare/mamacare-api/internal/tokens"
	"github.com/mamacare/mamacare-api/internal/users"
	"github.com/mamacare/mamacare-api/internal/wellness"
)

// Options are the optional backends. Zero values run without Redis or media
// uploads.
type Options struct {
	Redis    *redis.Client
	Media    storage.MediaStore
	Checks   map[string]handlers.Check
	Gatherer prometheus.Gatherer
	Now      func() time.Time
}

type App struct {
	Config    *config.Config
	Users     *users.Service
	Wellness  *wellness.Service
	Reminders *reminders.Service
	Forum     *forum.Service
	Clinics   *clinics.Service
	Content   *content.Service
	Sessions  *sessions.Service
	Blacklist *sessions.Blacklist
	Verifier  *tokens.Verifier

	opts Options
}

// New wires every service on db. Refresh sessions live in Redis when a client
// is given and in the sessions collection otherwise.
func New(cfg *config.Config, db store.Database, opts Options) *App {
	var sessRepo sessions.Repository
	if opts.Redis != nil {
		sessRepo = sessions.NewRedisRepository(opts.Redis, "session:")
	} else {
		sessRepo = sessions.NewStoreRepository(db.Collection(store.Sessions))
	}
	a := &App{
		Config:    cfg,
		Wellness:  wellness.NewService(db.Collection(store.WellnessLogs)),
		Reminders: reminders.NewService(db.Collection(store.Reminders)),
		Clinics:   clinics.NewService(db.Collection(store.Clinics)),
		Content:   content.NewService(db.Collection(store.Milestones), db.Collection(store.Guidance), opts.Media),
		Sessions:  sessions.NewService(sessRepo),
		Blacklist: sessions.NewBlacklist(opts.Redis),
		Verifier:  tokens.NewVerifier(cfg.JWT.Secret),
		opts:      opts,
	}

	userRepo := users.NewStoreUserRepository(db.Collection(store.Users))
	a.Forum = forum.NewService(db.Collection(store.ForumPosts), db.Collection(store.Comments), users.RepositoryResolver{Repo: userRepo})
	a.Users = users.NewService(userRepo, cfg, users.Options{
		Sessions:  a.Sessions,
		Blacklist: a.Blacklist,
		Purgers:   []users.Purger{a.Wellness, a.Reminders, a.Forum},
		Now:       opts.Now,
	})
	return a
}

// Router returns the HTTP handler for the whole API.
func (a *App) Router() *gin.Engine {
	checks := a.opts.Checks
	if a.opts.Redis != nil {
		checks = withCheck(checks, "redis", func(ctx context.Context) error {
			return a.opts.Redis.Ping(ctx).Err()
		})
	}
	return handlers.NewRouter(handlers.Deps{
		Config:    a.Config,
		Users:     a.Users,
		Wellness:  a.Wellness,
		Reminders: a.Reminders,
		Forum:     a.Forum,
		Clinics:   a.Clinics,
		Content:   a.Content,
		Verifier:  a.Verifier,
		Blacklist: a.Blacklist,
		Redis:     a.opts.Redis,
		Checks:    checks,
		Gatherer:  a.opts.Gatherer,
		Now:       a.opts.Now,
	})
}

func withCheck(checks map[string]handlers.Check, name string, fn handlers.Check) map[string]handlers.Check {
	out := make(map[string]handlers.Check, len(checks)+1)
	for k, v := range checks {
		out[k] = v
	}
	out[name] = fn
	return out
}

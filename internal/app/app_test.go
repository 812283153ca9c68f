package app

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamacare/mamacare-api/internal/config"
	"github.com/mamacare/mamacare-api/internal/storage"
	"github.com/mamacare/mamacare-api/internal/store"
)

func init() { gin.SetMode(gin.TestMode) }

const adminEmail = "admin@mamacare.test"

func newTestApp(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{CORSOrigin: "*"},
		JWT:    config.JWTConfig{Secret: "test-secret"},
		Admin:  config.AdminConfig{Emails: []string{adminEmail}},
	}
	a := New(cfg, store.NewMemoryDatabase(), Options{
		Redis:    rdb,
		Media:    storage.NewMemoryStorage(),
		Gatherer: prometheus.NewRegistry(),
	})
	return a.Router()
}

type signedIn struct {
	ID           string `json:"id"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	DueDate      string `json:"dueDate"`
	BirthClub    string `json:"birthClub"`
}

func register(t *testing.T, h http.Handler, email, lmp string) signedIn {
	t.Helper()
	var out signedIn
	apitest.New().Handler(h).
		Post("/api/users/register").
		JSON(map[string]string{
			"firstName": "Amina",
			"lastName":  "Uwase",
			"email":     email,
			"password":  "secret123",
			"lmp":       lmp,
		}).
		Expect(t).
		Status(http.StatusCreated).
		End().
		JSON(&out)
	require.NotEmpty(t, out.Token)
	return out
}

func bearer(token string) string { return "Bearer " + token }

func TestRegisterComputesDueDate(t *testing.T) {
	h := newTestApp(t)
	u := register(t, h, "Amina@Example.com", "2024-01-01")
	assert.Equal(t, "2024-10-07T00:00:00Z", u.DueDate)
	assert.Equal(t, "October 2024", u.BirthClub)
	assert.NotEmpty(t, u.RefreshToken)

	apitest.New().Handler(h).
		Post("/api/users/register").
		JSON(map[string]string{"firstName": "A", "lastName": "U", "email": "amina@example.com", "password": "x", "lmp": "2024-01-01"}).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"message":"User already exists","error":"validation"}`).
		End()

	apitest.New().Handler(h).
		Post("/api/users/login").
		JSON(map[string]string{"email": "amina@example.com", "password": "wrong"}).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"message":"Invalid email or password","error":"validation"}`).
		End()
}

func TestAuthFailures(t *testing.T) {
	h := newTestApp(t)

	apitest.New().Handler(h).
		Get("/api/users/profile").
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"message":"Not authorized, token missing","error":"unauthenticated"}`).
		End()

	apitest.New().Handler(h).
		Get("/api/wellness").
		Header("Authorization", bearer("not-a-jwt")).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newTestApp(t)
	u := register(t, h, "logout@example.com", "2025-03-01")

	apitest.New().Handler(h).
		Get("/api/users/profile").
		Header("Authorization", bearer(u.Token)).
		Expect(t).
		Status(http.StatusOK).
		End()

	apitest.New().Handler(h).
		Post("/api/users/logout").
		Header("Authorization", bearer(u.Token)).
		JSON(map[string]string{"refreshToken": u.RefreshToken}).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"message":"Logged out"}`).
		End()

	apitest.New().Handler(h).
		Get("/api/users/profile").
		Header("Authorization", bearer(u.Token)).
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"message":"Not authorized, token invalid","error":"unauthenticated","details":"token revoked"}`).
		End()

	apitest.New().Handler(h).
		Post("/api/users/refresh").
		JSON(map[string]string{"refreshToken": u.RefreshToken}).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestRefreshRotates(t *testing.T) {
	h := newTestApp(t)
	u := register(t, h, "refresh@example.com", "2025-03-01")

	var next struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	apitest.New().Handler(h).
		Post("/api/users/refresh").
		JSON(map[string]string{"refreshToken": u.RefreshToken}).
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&next)
	require.NotEmpty(t, next.Token)
	require.NotEqual(t, u.RefreshToken, next.RefreshToken)

	apitest.New().Handler(h).
		Post("/api/users/refresh").
		JSON(map[string]string{"refreshToken": u.RefreshToken}).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestWellnessNewestFirstAndOwnerOnly(t *testing.T) {
	h := newTestApp(t)
	owner := register(t, h, "owner@example.com", "2025-03-01")
	other := register(t, h, "other@example.com", "2025-03-01")

	var ids []string
	for _, date := range []string{"2025-05-01", "2025-05-03", "2025-05-02"} {
		var created struct {
			ID string `json:"id"`
		}
		apitest.New().Handler(h).
			Post("/api/wellness").
			Header("Authorization", bearer(owner.Token)).
			JSON(map[string]interface{}{"date": date, "mood": "calm", "sleepHours": 7.5}).
			Expect(t).
			Status(http.StatusCreated).
			End().
			JSON(&created)
		ids = append(ids, created.ID)
	}

	var logs []struct {
		ID   string `json:"id"`
		Date string `json:"date"`
	}
	apitest.New().Handler(h).
		Get("/api/wellness").
		Header("Authorization", bearer(owner.Token)).
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&logs)
	require.Len(t, logs, 3)
	assert.Equal(t, []string{ids[1], ids[2], ids[0]}, []string{logs[0].ID, logs[1].ID, logs[2].ID})

	apitest.New().Handler(h).
		Get("/api/wellness/"+ids[0]).
		Header("Authorization", bearer(other.Token)).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	apitest.New().Handler(h).
		Get("/api/wellness").
		Header("Authorization", bearer(other.Token)).
		Expect(t).
		Status(http.StatusOK).
		Body(`[]`).
		End()

	apitest.New().Handler(h).
		Post("/api/wellness").
		Header("Authorization", bearer(owner.Token)).
		JSON(map[string]interface{}{"sleepHours": -1}).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestRemindersSoonestFirst(t *testing.T) {
	h := newTestApp(t)
	u := register(t, h, "rem@example.com", "2025-03-01")

	for _, r := range []map[string]string{
		{"title": "Scan", "dateTime": "2025-07-10T09:00:00Z", "reminderType": "appointment"},
		{"title": "Iron", "dateTime": "2025-07-01T08:00:00Z", "reminderType": "medication"},
		{"title": "Walk", "dateTime": "2025-07-05T18:00:00Z"},
	} {
		apitest.New().Handler(h).
			Post("/api/reminders").
			Header("Authorization", bearer(u.Token)).
			JSON(r).
			Expect(t).
			Status(http.StatusCreated).
			End()
	}

	var list []struct {
		Title        string `json:"title"`
		ReminderType string `json:"reminderType"`
	}
	apitest.New().Handler(h).
		Get("/api/reminders").
		Header("Authorization", bearer(u.Token)).
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&list)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Iron", "Walk", "Scan"}, []string{list[0].Title, list[1].Title, list[2].Title})
	assert.Equal(t, "custom", list[1].ReminderType)

	apitest.New().Handler(h).
		Get("/api/reminders").
		Query("type", "medication").
		Header("Authorization", bearer(u.Token)).
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&list)
	require.Len(t, list, 1)

	apitest.New().Handler(h).
		Post("/api/reminders").
		Header("Authorization", bearer(u.Token)).
		JSON(map[string]string{"title": "x", "dateTime": "2025-07-01T08:00:00Z", "reminderType": "party"}).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestForumBirthClub(t *testing.T) {
	h := newTestApp(t)
	march := register(t, h, "march@example.com", "2025-06-01")
	assert.Equal(t, "March 2026", march.BirthClub)
	other := register(t, h, "other@example.com", "2025-01-01")

	var post struct {
		ID        string `json:"id"`
		BirthClub string `json:"birthClub"`
	}
	apitest.New().Handler(h).
		Post("/api/forum").
		Header("Authorization", bearer(march.Token)).
		JSON(map[string]interface{}{"content": "Who else is due in March?"}).
		Expect(t).
		Status(http.StatusCreated).
		End().
		JSON(&post)
	assert.Equal(t, "March 2026", post.BirthClub)

	apitest.New().Handler(h).
		Post("/api/forum").
		Header("Authorization", bearer(other.Token)).
		JSON(map[string]interface{}{"content": "Hello from October"}).
		Expect(t).
		Status(http.StatusCreated).
		End()

	var club []struct {
		ID string `json:"id"`
	}
	apitest.New().Handler(h).
		Get("/api/forum").
		Query("birthClub", "March 2026").
		Header("Authorization", bearer(other.Token)).
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&club)
	require.Len(t, club, 1)
	assert.Equal(t, post.ID, club[0].ID)

	apitest.New().Handler(h).
		Put("/api/forum/"+post.ID).
		Header("Authorization", bearer(other.Token)).
		JSON(map[string]string{"content": "hijacked"}).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	apitest.New().Handler(h).
		Post("/api/forum/"+post.ID+"/comments").
		Header("Authorization", bearer(other.Token)).
		JSON(map[string]string{"content": "Me too!"}).
		Expect(t).
		Status(http.StatusCreated).
		End()

	apitest.New().Handler(h).
		Post("/api/forum/"+post.ID+"/flag").
		Header("Authorization", bearer(other.Token)).
		Expect(t).
		Status(http.StatusOK).
		End()

	apitest.New().Handler(h).
		Delete("/api/forum/"+post.ID).
		Header("Authorization", bearer(march.Token)).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"message":"Post deleted"}`).
		End()
}

func TestAdminOnlyContent(t *testing.T) {
	h := newTestApp(t)
	user := register(t, h, "user@example.com", "2025-03-01")
	admin := register(t, h, adminEmail, "2025-03-01")

	clinic := map[string]string{"name": "Hope Maternity Clinic", "city": "Kigali", "type": "clinic"}
	apitest.New().Handler(h).
		Post("/api/clinics").
		Header("Authorization", bearer(user.Token)).
		JSON(clinic).
		Expect(t).
		Status(http.StatusForbidden).
		Body(`{"message":"Requires admin role","error":"forbidden"}`).
		End()

	apitest.New().Handler(h).
		Post("/api/clinics").
		Header("Authorization", bearer(admin.Token)).
		JSON(clinic).
		Expect(t).
		Status(http.StatusCreated).
		End()

	var clinics []struct {
		Name string `json:"name"`
	}
	apitest.New().Handler(h).
		Get("/api/clinics").
		Query("city", "Kigali").
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&clinics)
	require.Len(t, clinics, 1)
	assert.Equal(t, "Hope Maternity Clinic", clinics[0].Name)

	apitest.New().Handler(h).
		Post("/api/pregnancy").
		Header("Authorization", bearer(admin.Token)).
		JSON(map[string]interface{}{"week": 20, "title": "Halfway there"}).
		Expect(t).
		Status(http.StatusCreated).
		End()

	apitest.New().Handler(h).
		Get("/api/pregnancy/20").
		Expect(t).
		Status(http.StatusOK).
		End()

	apitest.New().Handler(h).
		Get("/api/pregnancy/21").
		Expect(t).
		Status(http.StatusNotFound).
		Body(`{"message":"Milestone not found","error":"not_found"}`).
		End()
}

func TestDeleteAccountCascades(t *testing.T) {
	h := newTestApp(t)
	u := register(t, h, "bye@example.com", "2025-03-01")

	apitest.New().Handler(h).
		Post("/api/wellness").
		Header("Authorization", bearer(u.Token)).
		JSON(map[string]string{"mood": "tired"}).
		Expect(t).
		Status(http.StatusCreated).
		End()

	apitest.New().Handler(h).
		Delete("/api/users/profile").
		Header("Authorization", bearer(u.Token)).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"message":"Account deleted"}`).
		End()

	apitest.New().Handler(h).
		Get("/api/wellness").
		Header("Authorization", bearer(u.Token)).
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"message":"Not authorized, user not found","error":"unauthenticated"}`).
		End()
}

func TestCalculatorAndOps(t *testing.T) {
	h := newTestApp(t)

	apitest.New().Handler(h).
		Get("/api/calculator/lmp").
		Query("date", time.Now().AddDate(0, 1, 0).Format("2006-01-02")).
		Expect(t).
		Status(http.StatusBadRequest).
		End()

	apitest.New().Handler(h).
		Get("/api/calculator/lmp").
		Query("date", "2024-01-01").
		Expect(t).
		Status(http.StatusOK).
		End()

	apitest.New().Handler(h).
		Get("/health").
		Expect(t).
		Status(http.StatusOK).
		Body("healthy").
		End()

	var ready struct {
		Status string            `json:"status"`
		Deps   map[string]string `json:"deps"`
	}
	apitest.New().Handler(h).
		Get("/ready").
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&ready)
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "ok", ready.Deps["redis"])

	apitest.New().Handler(h).
		Get("/").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"message":"Welcome to MamaCare API"}`).
		End()
}

func TestRateLimitPerUserBehindOneIP(t *testing.T) {
	cfg := &config.Config{
		Server:    config.ServerConfig{CORSOrigin: "*"},
		JWT:       config.JWTConfig{Secret: "test-secret"},
		RateLimit: config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2},
	}
	h := New(cfg, store.NewMemoryDatabase(), Options{Gatherer: prometheus.NewRegistry()}).Router()

	// both registrations spend the shared IP bucket
	a := register(t, h, "a@example.com", "2024-01-01")
	b := register(t, h, "b@example.com", "2024-01-01")

	profile := func(token string, status int) {
		apitest.New().Handler(h).
			Get("/api/users/profile").
			Header("Authorization", bearer(token)).
			Expect(t).
			Status(status).
			End()
	}
	profile(a.Token, http.StatusOK)
	profile(a.Token, http.StatusOK)
	profile(a.Token, http.StatusTooManyRequests)
	profile(b.Token, http.StatusOK)

	apitest.New().Handler(h).
		Get("/health").
		Expect(t).
		Status(http.StatusTooManyRequests).
		End()
}

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamacare/mamacare-api/internal/app"
	"github.com/mamacare/mamacare-api/internal/config"
	"github.com/mamacare/mamacare-api/internal/store"
)

func newServer(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "client-test"}}
	a := app.New(cfg, store.NewMemoryDatabase(), app.Options{Gatherer: prometheus.NewRegistry()})
	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", WithHTTPClient(srv.Client()))
}

func TestSignUpAndOwnData(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	p, sess, err := c.Register(ctx, RegisterRequest{FirstName: "Grace", LastName: "Mukamana", Email: "grace@example.com", Password: "pw123456", LMP: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "Grace Mukamana", p.Name)
	assert.Equal(t, "October 2024", p.BirthClub)
	require.True(t, sess.Valid())
	assert.Equal(t, p.ID, sess.UserID)

	_, err = c.CreateWellness(ctx, sess, WellnessEntry{Mood: "happy", Symptoms: []string{"nausea"}})
	require.NoError(t, err)
	logs, err := c.ListWellness(ctx, sess)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "happy", logs[0].Mood)

	_, err = c.CreateReminder(ctx, sess, ReminderEntry{Title: "Clinic visit", DateTime: "2025-02-01T10:00:00Z", ReminderType: "appointment"})
	require.NoError(t, err)
	rem, err := c.ListReminders(ctx, sess, "appointment")
	require.NoError(t, err)
	require.Len(t, rem, 1)

	post, err := c.CreatePost(ctx, sess, "Hello October mums", true)
	require.NoError(t, err)
	assert.Nil(t, post.Author)
	_, err = c.AddComment(ctx, sess, post.ID, "Replying to myself")
	require.NoError(t, err)
	comments, err := c.ListComments(ctx, sess, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "Grace Mukamana", comments[0].Author.Name)
}

func TestErrorsSurfaceServerMessage(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	_, _, err := c.Login(ctx, "nobody@example.com", "pw")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	_, err = c.Profile(ctx, &Session{Token: "garbage"})
	require.True(t, IsStatus(err, http.StatusUnauthorized))

	_, err = c.Profile(ctx, &Session{})
	require.ErrorIs(t, err, ErrNoSession)
}

func TestFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Clinics(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, FallbackMessage, err.Error())
	assert.True(t, IsStatus(err, http.StatusBadGateway))
}

func TestRefreshAndLogout(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()
	_, sess, err := c.Register(ctx, RegisterRequest{FirstName: "Ada", LastName: "N", Email: "ada@example.com", Password: "pw123456", LMP: "2025-01-01"})
	require.NoError(t, err)

	oldRefresh := sess.RefreshToken
	require.NoError(t, c.Refresh(ctx, sess))
	assert.NotEqual(t, oldRefresh, sess.RefreshToken)

	_, err = c.Profile(ctx, sess)
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx, sess))
	err = c.Refresh(ctx, sess)
	require.True(t, IsStatus(err, http.StatusUnauthorized))
}

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/sessions"
	"github.com/mamacare/mamacare-api/internal/tokens"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeVerifier accepts "goodtoken" for user1 and "ghosttoken" for a deleted user.
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (*tokens.Claims, error) {
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	switch raw {
	case "goodtoken", "black-token":
		return &tokens.Claims{UID: "user1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, nil
	case "admintoken":
		return &tokens.Claims{UID: "admin1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, nil
	case "ghosttoken":
		return &tokens.Claims{UID: "ghost", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

type fakeUsers map[string]*models.Identity

func (f fakeUsers) ResolveIdentity(_ context.Context, id string) (*models.Identity, error) {
	return f[id], nil
}

var testUsers = fakeUsers{
	"user1":  {ID: "user1", Name: "Amina"},
	"admin1": {ID: "admin1", Name: "Admin", IsAdmin: true},
}

func serve(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	return rw
}

func decodeBody(t *testing.T, rw *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	return got
}

func protectedRouter(revoked RevocationChecker, extra ...gin.HandlerFunc) *gin.Engine {
	g := gin.New()
	chain := append([]gin.HandlerFunc{Authenticate(&fakeVerifier{}, testUsers, revoked)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": Identity(c).ID, "token": AccessToken(c), "sub": Claims(c).UserID()})
	})
	g.GET("/", chain...)
	return g
}

func TestAuthenticate_NoHeader(t *testing.T) {
	rw := serve(t, protectedRouter(nil), "")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Equal(t, "Not authorized, token missing", decodeBody(t, rw)["message"])
}

func TestAuthenticate_InvalidHeader(t *testing.T) {
	rw := serve(t, protectedRouter(nil), "BadHeader")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Equal(t, "Not authorized, token missing", decodeBody(t, rw)["message"])
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	rw := serve(t, protectedRouter(nil), "Bearer nope")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	body := decodeBody(t, rw)
	require.Equal(t, "Not authorized, token invalid", body["message"])
	require.Equal(t, "invalid token", body["details"])
}

func TestAuthenticate_ValidToken(t *testing.T) {
	rw := serve(t, protectedRouter(nil), "bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	body := decodeBody(t, rw)
	require.Equal(t, "user1", body["user"])
	require.Equal(t, "goodtoken", body["token"])
	require.Equal(t, "user1", body["sub"])
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	rw := serve(t, protectedRouter(nil), "Bearer ghosttoken")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Equal(t, "Not authorized, user not found", decodeBody(t, rw)["message"])
}

func TestAuthenticate_RejectsBlacklistedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	bl := sessions.NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	require.NoError(t, bl.Revoke(context.Background(), "black-token", 5*time.Second))

	g := protectedRouter(bl)
	require.Equal(t, http.StatusUnauthorized, serve(t, g, "Bearer black-token").Code)
	require.Equal(t, http.StatusOK, serve(t, g, "Bearer goodtoken").Code)

	// an unreachable blacklist does not lock users out
	m.Close()
	require.Equal(t, http.StatusOK, serve(t, g, "Bearer black-token").Code)
}

func TestRequireAdmin(t *testing.T) {
	g := protectedRouter(nil, RequireAdmin())
	rw := serve(t, g, "Bearer goodtoken")
	require.Equal(t, http.StatusForbidden, rw.Code)
	require.Equal(t, "Requires admin role", decodeBody(t, rw)["message"])
	require.Equal(t, http.StatusOK, serve(t, g, "Bearer admintoken").Code)

	bare := gin.New()
	bare.GET("/", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	require.Equal(t, http.StatusUnauthorized, serve(t, bare, "").Code)
}

func TestAuthenticate_EmptySecretToken(t *testing.T) {
	claims := tokens.Claims{
		UID:              "admin1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	require.NoError(t, err)

	g := gin.New()
	g.GET("/", Authenticate(tokens.NewVerifier(""), testUsers, nil), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	rw := serve(t, g, "Bearer "+forged)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Equal(t, "Not authorized, token invalid", decodeBody(t, rw)["message"])
}

package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/mamacare/mamacare-api/internal/config"
	"github.com/mamacare/mamacare-api/internal/models"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	return cfg
}

func TestGenerateAccessToken_ValidAndClaims(t *testing.T) {
	cfg := testConfig("test-secret-32-bytes-should-be-long-enough")
	u := &models.User{ID: "user-123", Name: "Test User", Email: "test@example.com"}

	tokenStr, err := GenerateAccessToken(cfg, u, 30*24*time.Hour)
	require.NoError(t, err)

	claims, err := NewVerifier(cfg.JWT.Secret).Verify(context.Background(), tokenStr)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID())
	require.Equal(t, "user-123", claims.Subject)
	require.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.Expiry(), 5*time.Second)
}

func TestVerify_Expired(t *testing.T) {
	cfg := testConfig("another-secret-32-bytes-longgggg")
	u := &models.User{ID: "u2"}
	tokenStr, err := GenerateAccessToken(cfg, u, -time.Minute)
	require.NoError(t, err)

	_, err = NewVerifier(cfg.JWT.Secret).Verify(context.Background(), tokenStr)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_WrongSecretFails(t *testing.T) {
	cfg := testConfig("secret-one-32-bytes-xxxxxxxxxxxxxxxx")
	tokenStr, err := GenerateAccessToken(cfg, &models.User{ID: "u3"}, 2*time.Minute)
	require.NoError(t, err)

	_, err = NewVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tokenStr)
	require.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := NewVerifier("x").Verify(context.Background(), "not.a.jwt")
	require.Error(t, err)
}

func segment(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

// Rejected when alg=none (unsigned token)
func TestVerify_AlgNoneRejected(t *testing.T) {
	tok := segment(`{"alg":"none","typ":"JWT"}`) + "." + segment(`{"id":"u-none","exp":9999999999}`) + "."
	_, err := NewVerifier("x").Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestVerify_NonHMACRejected(t *testing.T) {
	tok := segment(`{"alg":"RS256","typ":"JWT"}`) + "." + segment(`{"id":"u-rsa","exp":9999999999}`) + "." + segment("sig")
	_, err := NewVerifier("x").Verify(context.Background(), tok)
	require.Error(t, err)
}

// Tampering with payload must fail signature verification
func TestVerify_TamperedPayload(t *testing.T) {
	cfg := testConfig("tamper-test-secret-32-bytes-xxxxxxx")
	tokenStr, err := GenerateAccessToken(cfg, &models.User{ID: "user-t"}, 5*time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	parts[1] = segment(strings.ReplaceAll(string(payload), "user-t", "attacker"))

	_, err = NewVerifier(cfg.JWT.Secret).Verify(context.Background(), strings.Join(parts, "."))
	require.Error(t, err)
}

func TestVerify_MissingUserID(t *testing.T) {
	secret := "no-subject-secret-32-bytes-xxxxxxxx"
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = NewVerifier(secret).Verify(context.Background(), tokenStr)
	require.Error(t, err)
}

func TestEmptySecretRejected(t *testing.T) {
	_, err := GenerateAccessToken(testConfig(""), &models.User{ID: "u-empty"}, time.Hour)
	require.ErrorIs(t, err, ErrNoSecret)

	claims := Claims{
		UID:              "admin-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	require.NoError(t, err)

	_, err = NewVerifier("").Verify(context.Background(), forged)
	require.ErrorIs(t, err, ErrNoSecret)
}

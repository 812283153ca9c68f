package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/tokens"
	"github.com/mamacare/mamacare-api/pkg/logger"
	"github.com/mamacare/mamacare-api/pkg/metrics"
)

const (
	identityKey = "identity"
	claimsKey   = "claims"
	tokenKey    = "accessToken"

	msgTokenMissing = "Not authorized, token missing"
	msgTokenInvalid = "Not authorized, token invalid"
	msgUserNotFound = "Not authorized, user not found"
	msgAdminOnly    = "Requires admin role"
)

// Verifier checks a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*tokens.Claims, error)
}

// IdentityResolver loads the caller named by the token. A nil identity means
// the user no longer exists.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id string) (*models.Identity, error)
}

// RevocationChecker reports logged-out tokens.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

func abort(c *gin.Context, e *apperr.Error, details string) {
	c.AbortWithStatusJSON(e.Status(), apperr.Body(e, details))
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate verifies the Bearer token, rejects revoked tokens and attaches
// the caller's identity to the context. revoked may be nil.
func Authenticate(ver Verifier, users IdentityResolver, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			metrics.AuthFailures.WithLabelValues("missing").Inc()
			abort(c, apperr.Unauthenticated(msgTokenMissing), "")
			return
		}
		ctx := c.Request.Context()

		claims, err := ver.Verify(ctx, raw)
		if err != nil {
			metrics.AuthFailures.WithLabelValues("invalid").Inc()
			abort(c, apperr.Unauthenticated(msgTokenInvalid), err.Error())
			return
		}
		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(ctx, raw)
			if err != nil {
				// fail open
				logger.Warnf("auth: blacklist lookup failed: %v", err)
			} else if isRevoked {
				metrics.AuthFailures.WithLabelValues("revoked").Inc()
				abort(c, apperr.Unauthenticated(msgTokenInvalid), "token revoked")
				return
			}
		}

		identity, err := users.ResolveIdentity(ctx, claims.UserID())
		if err != nil {
			abort(c, apperr.As(err), "")
			return
		}
		if identity == nil {
			metrics.AuthFailures.WithLabelValues("unknown_user").Inc()
			abort(c, apperr.Unauthenticated(msgUserNotFound), "")
			return
		}

		c.Set(identityKey, identity)
		c.Set(claimsKey, claims)
		c.Set(tokenKey, raw)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := Identity(c)
		if identity == nil {
			abort(c, apperr.Unauthenticated(msgTokenMissing), "")
			return
		}
		if !identity.IsAdmin {
			metrics.AuthFailures.WithLabelValues("not_admin").Inc()
			abort(c, apperr.Forbidden(msgAdminOnly), "")
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated caller, or nil on public routes.
func Identity(c *gin.Context) *models.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*models.Identity); ok {
			return id
		}
	}
	return nil
}

// Claims returns the verified token claims.
func Claims(c *gin.Context) *tokens.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if cl, ok := v.(*tokens.Claims); ok {
			return cl
		}
	}
	return nil
}

// AccessToken returns the raw bearer token the request authenticated with.
func AccessToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

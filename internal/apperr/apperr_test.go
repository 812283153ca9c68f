package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, Validation("x").Status())
	require.Equal(t, http.StatusUnauthorized, Unauthenticated("x").Status())
	require.Equal(t, http.StatusForbidden, Forbidden("x").Status())
	require.Equal(t, http.StatusNotFound, NotFound("x").Status())
	require.Equal(t, http.StatusTooManyRequests, RateLimited("x").Status())
	require.Equal(t, http.StatusInternalServerError, Server(fmt.Errorf("boom"), "x").Status())
}

func TestAsClassifiesWrappedErrors(t *testing.T) {
	wrapped := errors.Wrap(NotFound("Reminder not found"), "load reminder")
	e := As(wrapped)
	require.Equal(t, KindNotFound, e.Kind)
	require.Equal(t, "Reminder not found", e.Message)
	require.True(t, Is(wrapped, KindNotFound))

	plain := As(fmt.Errorf("socket closed"))
	require.Equal(t, KindServer, plain.Kind)
	require.Equal(t, "Server error", plain.Message)
	require.Nil(t, As(nil))
}

func TestBody(t *testing.T) {
	require.Equal(t, map[string]interface{}{"message": "Forbidden", "error": "forbidden"}, Body(Forbidden("Forbidden"), ""))
	b := Body(Unauthenticated("Not authorized, token invalid"), "token is expired")
	require.Equal(t, "token is expired", b["details"])
	require.Equal(t, "unauthenticated", b["error"])
}

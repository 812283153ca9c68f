package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/pkg/logger"
)

const msgInvalidBody = "Invalid request body"

// respondError is the single place service errors become HTTP responses.
// Causes of server errors are logged and never sent to the client.
func respondError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindServer {
		logger.Errorf("%s %s: %+v", c.Request.Method, c.Request.URL.Path, err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.Status(), apperr.Body(e, ""))
}

// bindJSON decodes the request body into v. An empty body leaves v zeroed.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		e := apperr.Validation(msgInvalidBody)
		_ = c.Error(err)
		c.AbortWithStatusJSON(e.Status(), apperr.Body(e, err.Error()))
		return false
	}
	return true
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/internal/errs"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorHandler renders the last error a handler attached with c.Error.
// Domain errors keep their status and message; anything else becomes a 500
// with a generic body and is logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var domain *errs.Error
		if errors.As(err, &domain) && domain.Code != errs.CodeInternal {
			c.JSON(domain.HTTPStatus(), ErrorResponse{Error: domain.Message, Fields: domain.Fields})
			return
		}

		log.Error().Err(err).
			Str("component", "http").
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", RequestID(c)).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: errs.ErrInternal.Message})
	}
}

// Recovery turns panics into a 500 JSON body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().
			Str("component", "http").
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Str("request_id", RequestID(c)).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: errs.ErrInternal.Message})
	})
}

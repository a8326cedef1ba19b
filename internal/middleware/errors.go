package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Jorge-Marco5/go-api-template/internal/apperr"
	"github.com/Jorge-Marco5/go-api-template/internal/logger"
	"github.com/Jorge-Marco5/go-api-template/internal/response"
)

// ErrorHandler is the single responder for domain errors. Handlers and
// middleware attach errors to the gin context; this middleware maps the
// error kind to a status and writes the envelope. Unexpected errors are
// logged in full but surfaced as a generic message in production; the
// underlying detail and a stack trace are included otherwise.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperr.From(err)
		log := logger.Get()

		if appErr.Kind == apperr.KindInternal {
			log.Error("unhandled error",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			resp := response.Response{
				Success: false,
				Message: "internal server error",
			}
			if !production {
				resp.Error = appErr.Error()
				resp.Stack = string(debug.Stack())
			}
			c.JSON(http.StatusInternalServerError, resp)
			return
		}

		log.Warn("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("kind", appErr.Kind.String()),
			zap.String("message", appErr.Message),
		)
		response.Fail(c, appErr.Kind.Status(), appErr.Message)
	}
}

// NotFoundHandler answers unmatched routes with the JSON envelope.
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "route not found")
	}
}

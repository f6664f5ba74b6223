package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tolpa-999/PerfumBackend/pkg/apihelpers"
)

// RequirePayload blocks post requests that have no payload attached
func RequirePayload() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 {
			slog.Debug("RequirePayload Middleware: payload missing")
			apihelpers.SendFail(c, http.StatusBadRequest, "payload missing")
			c.Abort()
			return
		}
		c.Next()
	}
}

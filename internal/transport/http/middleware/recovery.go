package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "bidmarket/internal/transport/http/response"
)

func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered", zap.Any("panic", rec), zap.String("path", c.Request.URL.Path))
				resp.AbortError(c, http.StatusInternalServerError, resp.MsgInternal)
			}
		}()
		c.Next()
	}
}

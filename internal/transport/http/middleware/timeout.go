package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	resp "bidmarket/internal/transport/http/response"
)

// Timeout 给请求上下文设截止时间，所有落库调用借此有界；
// 超时在 handler 层表现为 store 错误（500），这里兜底 504。
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			resp.AbortError(c, http.StatusGatewayTimeout, "timeout")
		}
	}
}

package response

import "github.com/gin-gonic/gin"

// 客户端可见文案。内部错误只给通用消息，细节进日志不出网。
const (
	MsgInternal           = "Internal server error."
	MsgInvalidCredentials = "Invalid credentials."
	MsgMissingCredentials = "Username and password required."
)

// Error 统一失败体 {"error": msg}
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// AbortError 中间件用：写失败体并终止后续 handler
func AbortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bidmarket/internal/domain"
	"bidmarket/internal/service"
	resp "bidmarket/internal/transport/http/response"
)

const principalKey = "principal"

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BasicAuth 逐请求认证：凭证取自 JSON 请求体（历史客户端约定），
// 读完后还原 body 供 handler 再次绑定。
// 对外不区分“用户不存在”与“密码错误”，统一 401。
func BasicAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			resp.AbortError(c, http.StatusBadRequest, resp.MsgMissingCredentials)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var creds credentials
		_ = json.Unmarshal(body, &creds) // 解析失败等同缺少凭证

		principal, err := auth.Authenticate(c.Request.Context(), creds.Username, creds.Password)
		switch {
		case err == nil:
			c.Set(principalKey, principal)
			c.Next()
		case errors.Is(err, domain.ErrMissingCredentials):
			resp.AbortError(c, http.StatusBadRequest, resp.MsgMissingCredentials)
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrWrongPassword):
			resp.AbortError(c, http.StatusUnauthorized, resp.MsgInvalidCredentials)
		default:
			resp.AbortError(c, http.StatusInternalServerError, resp.MsgInternal)
		}
	}
}

// Principal 取出当前请求已认证的用户
func Principal(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}

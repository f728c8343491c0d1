package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidmarket/internal/domain"
	resp "bidmarket/internal/transport/http/response"
)

// 拒绝文案是对外契约的一部分，逐字保持
func denyMessage(roles []domain.Role) string {
	if len(roles) == 1 {
		switch roles[0] {
		case domain.RoleSupplier:
			return "Access denied: Supplier role required."
		case domain.RoleBuyer:
			return "Access denied: Buyer role required."
		}
	}
	return "Access denied: Buyer or Supplier role required."
}

// RequireAnyRole 授权判定。没有 principal 一律按角色不符处理（默认拒绝），
// 不触达存储层。
func RequireAnyRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if ok {
			for _, r := range roles {
				if p.Role == r {
					c.Next()
					return
				}
			}
		}
		resp.AbortError(c, http.StatusForbidden, denyMessage(roles))
	}
}

func RequireRole(role domain.Role) gin.HandlerFunc {
	return RequireAnyRole(role)
}

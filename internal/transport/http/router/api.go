package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bidmarket/internal/core/server"
	"bidmarket/internal/domain"
	"bidmarket/internal/service"
	"bidmarket/internal/transport/http/handler"
	mdw "bidmarket/internal/transport/http/middleware"
)

// NewAPIEngine 组装完整路由。凭证在请求体里，因此读类路由同时
// 注册 GET 和 POST（历史客户端两种都发）。
func NewAPIEngine(l *zap.Logger, auth *service.AuthService, offers *service.OfferService, requestTimeout time.Duration) *gin.Engine {
	r := server.NewEngine(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(requestTimeout),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authH := handler.NewAuthHandler(auth)
	offerH := handler.NewOfferHandler(offers)

	basicAuth := mdw.BasicAuth(auth)
	anyUser := mdw.RequireAnyRole(domain.RoleSupplier, domain.RoleBuyer)
	supplierOnly := mdw.RequireRole(domain.RoleSupplier)
	buyerOnly := mdw.RequireRole(domain.RoleBuyer)

	api := r.Group("/api")

	ar := api.Group("/auth")
	{
		ar.POST("/signup", authH.Signup)
		ar.POST("/login", authH.Login)

		profile := ar.Group("", basicAuth)
		profile.GET("/profile", authH.Profile)
		profile.POST("/profile", authH.Profile)
		profile.PUT("/profile", authH.UpdateProfile)
	}

	of := api.Group("/offers", basicAuth)
	{
		of.GET("/", anyUser, offerH.List)
		of.POST("/", anyUser, offerH.List)

		of.GET("/myoffers", supplierOnly, offerH.MyOffers)
		of.POST("/myoffers", supplierOnly, offerH.MyOffers)

		of.GET("/offerdetails/:id", anyUser, offerH.Detail)
		of.POST("/offerdetails/:id", anyUser, offerH.Detail)

		of.POST("/offercreate", supplierOnly, offerH.Create)

		of.POST("/offerbid", buyerOnly, offerH.PlaceBid)
		of.GET("/offerbid/:offerId", anyUser, offerH.Bids)
		of.POST("/offerbid/:offerId", anyUser, offerH.Bids)

		of.DELETE("/:id", supplierOnly, offerH.Delete)
	}

	// 兜底响应保持 200 信封而非 404，已有客户端依赖（见 DESIGN.md）
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Page/Route not found"})
	})

	return r
}

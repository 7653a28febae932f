package server

import (
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/handler"
	"marketplace/internal/metrics"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Address  *handler.AddressHandler
	Order    *handler.OrderHandler
	Tracking *handler.TrackingHandler
	Admin    *handler.AdminHandler
	WS       *handler.WSHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, m *metrics.Metrics, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	h.Auth.RegisterRoutes(e)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.Tracking.RegisterRoutes(e, cfg, userRepo)
	h.Admin.RegisterRoutes(e, cfg, userRepo)

	//ログイン必須で、ロールは問わない
	authed := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}
	h.Auth.RegisterProtected(e, authed...)
	h.Address.RegisterRoutes(e.Group("/addresses", authed...))
	//websocketだけ ?token= を許す
	h.WS.RegisterRoutes(e,
		middleware.AuthJWTWebSocket(cfg),
		middleware.TokenVersionGuard(userRepo),
	)
}

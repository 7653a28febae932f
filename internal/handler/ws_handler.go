package handler

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/notify"

	"github.com/labstack/echo/v4"
)

type WSHandler struct {
	hub *notify.Hub
}

func NewWSHandler(hub *notify.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

func (h *WSHandler) RegisterRoutes(e *echo.Echo, mws ...echo.MiddlewareFunc) {
	e.GET("/ws", h.Serve, mws...)
}

// 接続が閉じるまで戻らない
func (h *WSHandler) Serve(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	if err := h.hub.Serve(c.Response(), c.Request(), actor.UserID); err != nil {
		//Upgradeがレスポンスを書いている
		c.Set(middleware.CtxErrorKey, err)
	}
	return nil
}

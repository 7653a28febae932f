package handler

import (
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

type TrackingHandler struct {
	uc *usecase.TrackingUsecase
}

func NewTrackingHandler(uc *usecase.TrackingUsecase) *TrackingHandler {
	return &TrackingHandler{uc: uc}
}

func (h *TrackingHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/tracking")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	sellerOrAdmin := middleware.RoleGuard(string(model.RoleSeller), cfg.AdminRole)

	g.POST("/add", h.add, sellerOrAdmin)
	g.GET("/get/:order_id", h.get)
	g.PUT("/update/:id", h.update, sellerOrAdmin)
}

func (h *TrackingHandler) add(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.AddTrackingInput
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid body")
	}

	v, err := h.uc.AddTracking(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusCreated, "Tracking info added successfully", v)
}

func (h *TrackingHandler) get(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "order_id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	v, err := h.uc.GetTracking(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Tracking info fetched successfully", v)
}

func (h *TrackingHandler) update(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	var req usecase.TrackingPatch
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid body")
	}

	v, err := h.uc.UpdateTracking(c.Request().Context(), actor, id, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Tracking info updated successfully", v)
}

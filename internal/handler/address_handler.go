package handler

import (
	"net/http"

	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

// g は /addresses（認証済み）
func (h *AddressHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/default", h.SetDefault)
}

func (h *AddressHandler) List(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}

	list, err := h.uc.List(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Addresses fetched successfully", list)
}

func (h *AddressHandler) Create(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.AddressRequest
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}

	created, err := h.uc.Create(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusCreated, "Address added successfully", created)
}

func (h *AddressHandler) Update(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	var req usecase.AddressRequest
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}

	if err := h.uc.Update(c.Request().Context(), actor, id, req); err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "updated", nil)
}

func (h *AddressHandler) Delete(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), actor, id); err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "deleted", nil)
}

func (h *AddressHandler) SetDefault(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.SetDefault(c.Request().Context(), actor, id); err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "default set", nil)
}

package handler

import (
	"fmt"
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc      *usecase.OrderUsecase
	invoice *usecase.InvoiceUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase, invoice *usecase.InvoiceUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, invoice: invoice}
}

type orderStatusRequest struct {
	OrderStatus *int `json:"order_status" validate:"required"`
}

type cancelOrderRequest struct {
	CancelReason string `json:"cancel_reason"`
}

// フラットなbodyを order / payment / tracking に分ける
type updateDetailsRequest struct {
	usecase.OrderPatch
	usecase.PaymentPatch
	usecase.TrackingPatch
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/order")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	sellerOrAdmin := middleware.RoleGuard(string(model.RoleSeller), cfg.AdminRole)

	g.POST("/create", h.create, middleware.RoleGuard(string(model.RoleBuyer)))
	g.GET("/recentorders", h.recentOrders, middleware.RoleGuard(string(model.RoleSeller)))
	g.GET("/userorders", h.userOrders, middleware.RoleGuard(string(model.RoleBuyer)))
	g.GET("/invoice/:order_id", h.downloadInvoice)
	g.GET("/:order_id", h.detail)
	g.PUT("/updateorderstatus/:order_id", h.updateStatus, sellerOrAdmin)
	g.PUT("/updatedetails/:order_id", h.updateDetails, sellerOrAdmin)
	g.PUT("/cancelorderbyuser/:order_id", h.cancel)
}

func (h *OrderHandler) create(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusCreated, "Order created successfully", out)
}

func (h *OrderHandler) recentOrders(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}

	list, err := h.uc.ListForSeller(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Orders fetched successfully", list)
}

func (h *OrderHandler) userOrders(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}

	list, err := h.uc.ListForBuyer(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Orders fetched successfully", list)
}

func (h *OrderHandler) detail(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "order_id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	d, err := h.uc.GetOrder(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Order fetched successfully", d)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "order_id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	var req orderStatusRequest
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}

	o, err := h.uc.UpdateOrderStatus(c.Request().Context(), actor, id, *req.OrderStatus)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Order status updated successfully", o)
}

func (h *OrderHandler) updateDetails(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "order_id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	var req updateDetailsRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid body")
	}

	res, err := h.uc.UpdateOrderDetails(c.Request().Context(), actor, id, usecase.UpdateDetailsInput{
		Order:    req.OrderPatch,
		Payment:  req.PaymentPatch,
		Tracking: req.TrackingPatch,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, res.Message, res)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "order_id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	var req cancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid body")
	}

	o, err := h.uc.CancelOrderByUser(c.Request().Context(), actor, id, req.CancelReason)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Order cancelled successfully", o)
}

// PDFはenvelopeに包まずそのまま返す
func (h *OrderHandler) downloadInvoice(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "order_id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	f, err := h.invoice.Invoice(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Filename))
	return c.Blob(http.StatusOK, "application/pdf", f.Content)
}

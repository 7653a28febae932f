package handler

import (
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	orders  *usecase.OrderUsecase
	reviews *usecase.ReviewUsecase
	audit   *usecase.AuditUsecase
	auth    *usecase.AuthUsecase
}

func NewAdminHandler(orders *usecase.OrderUsecase, reviews *usecase.ReviewUsecase, audit *usecase.AuditUsecase, auth *usecase.AuthUsecase) *AdminHandler {
	return &AdminHandler{orders: orders, reviews: reviews, audit: audit, auth: auth}
}

type reviewRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.RoleGuard(cfg.AdminRole))

	admin.GET("/orders", h.listOrders)
	admin.DELETE("/orders/:order_id", h.deleteOrder)
	admin.PUT("/products/:id/review", h.reviewProduct)
	admin.PUT("/users/:id/review", h.reviewUser)
	admin.POST("/users/:id/force-logout", h.forceLogout)
	admin.GET("/audit-logs", h.auditLogs)
	admin.GET("/dashboard-stats", h.dashboardStats)
}

func (h *AdminHandler) listOrders(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}

	f := repository.AdminOrderListFilter{Page: 1, Limit: 50}
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return writeFail(c, http.StatusBadRequest, "invalid page")
		}
		f.Page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return writeFail(c, http.StatusBadRequest, "invalid limit")
		}
		f.Limit = l
	}
	if v := c.QueryParam("status"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil {
			return writeFail(c, http.StatusBadRequest, "invalid status")
		}
		st := model.OrderStatus(s)
		f.Status = &st
	}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeFail(c, http.StatusBadRequest, "invalid user_id")
		}
		f.UserID = &id
	}
	var err error
	if f.From, err = queryTime(c, "from"); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid from")
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid to")
	}

	out, err := h.orders.AdminList(c.Request().Context(), actor, f)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Orders fetched successfully", out)
}

func (h *AdminHandler) deleteOrder(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "order_id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.orders.DeleteOrder(c.Request().Context(), actor, id); err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Order deleted successfully", nil)
}

func (h *AdminHandler) reviewProduct(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	var req reviewRequest
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.reviews.ReviewProduct(c.Request().Context(), actor, id, *req.Approve)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Product reviewed successfully", p)
}

func (h *AdminHandler) reviewUser(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	var req reviewRequest
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}

	u, err := h.reviews.ReviewAccount(c.Request().Context(), actor, id, *req.Approve)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Account reviewed successfully", u)
}

func (h *AdminHandler) forceLogout(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeFail(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.auth.ForceLogout(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "logged out", out)
}

func (h *AdminHandler) auditLogs(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, "unauthorized")
	}

	var f repository.AuditLogFilter
	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeFail(c, http.StatusBadRequest, "invalid actor_user_id")
		}
		f.ActorUserID = &id
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeFail(c, http.StatusBadRequest, "invalid resource_id")
		}
		f.ResourceID = &id
	}
	var err error
	if f.CreatedFrom, err = queryTime(c, "from"); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid from")
	}
	if f.CreatedTo, err = queryTime(c, "to"); err != nil {
		return writeFail(c, http.StatusBadRequest, "invalid to")
	}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	logs, err := h.audit.List(c.Request().Context(), actor, f)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Audit logs fetched successfully", logs)
}

func (h *AdminHandler) dashboardStats(c echo.Context) error {
	stats, err := h.reviews.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Dashboard stats fetched successfully", stats)
}

// RFC3339。空ならnil
func queryTime(c echo.Context, key string) (*time.Time, error) {
	v := c.QueryParam(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	return r
}

func TestWriteError(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantMsg   string
		wantCause bool
	}{
		{"http error", &usecase.HTTPError{Status: http.StatusConflict, Message: "Tracking already exists for this order", Err: usecase.ErrConflict}, http.StatusConflict, "Tracking already exists for this order", true},
		{"http error without cause", usecase.NewHTTPError(http.StatusBadRequest, "invalid body"), http.StatusBadRequest, "invalid body", false},
		{"echo error", echo.NewHTTPError(http.StatusNotFound), http.StatusNotFound, "Not Found", false},
		{"bare sentinel", usecase.ErrForbidden, http.StatusForbidden, "forbidden", false},
		{"unknown", cause, http.StatusInternalServerError, "internal error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/")
			require.NoError(t, writeError(c, tt.err))

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Status)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, tt.wantCause, c.Get(middleware.CtxErrorKey) != nil)
		})
	}
}

func TestActorFrom(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	_, ok := actorFrom(c)
	assert.False(t, ok)

	c.Set(middleware.CtxUserIDKey, int64(7))
	c.Set(middleware.CtxUserRoleKey, "SELLER")
	a, ok := actorFrom(c)
	require.True(t, ok)
	assert.Equal(t, usecase.Actor{UserID: 7, Role: model.RoleSeller}, a)
}

func TestPathID(t *testing.T) {
	for raw, want := range map[string]bool{"12": true, "0": false, "-3": false, "abc": false} {
		c, _ := newContext(http.MethodGet, "/")
		c.SetParamNames("order_id")
		c.SetParamValues(raw)
		_, ok := pathID(c, "order_id")
		assert.Equal(t, want, ok, raw)
	}
}

// FindDetail / FindByID 以外は呼ばれない
type stubOrders struct {
	repository.OrderRepository
	detail model.OrderDetail
}

func (s stubOrders) FindDetail(_ context.Context, orderID int64) (model.OrderDetail, error) {
	if orderID != s.detail.ID {
		return model.OrderDetail{}, repository.ErrNotFound
	}
	return s.detail, nil
}

type stubRepos struct {
	repository.TxRepos
	orders stubOrders
}

func (s stubRepos) Orders() repository.OrderRepository { return s.orders }

type stubTx struct{ repos stubRepos }

func (s stubTx) WithinTx(_ context.Context, fn func(r repository.TxRepos) error) error {
	return fn(s.repos)
}

type stubUsers struct {
	repository.UserRepository
}

func (stubUsers) FindByID(_ context.Context, id int64) (*model.User, error) {
	return &model.User{ID: id, IsActive: true, TokenVersion: 0}, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(model.OrderDetail) ([]byte, error) { return []byte("%PDF-1.3 test"), nil }

func bearer(t *testing.T, sub int64, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"tv":   0,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func newOrderEcho() *echo.Echo {
	detail := model.OrderDetail{Order: model.Order{ID: 1, OrderUID: "Ab12Cd34", BuyerID: 10, SellerID: 20, Status: model.OrderStatusDelivered}}
	tx := stubTx{repos: stubRepos{orders: stubOrders{detail: detail}}}
	guard := usecase.NewGuard("ADMIN")
	h := NewOrderHandler(nil, usecase.NewInvoiceUsecase(tx, guard, stubRenderer{}))

	e := echo.New()
	h.RegisterRoutes(e, config.Config{JWTSecret: testSecret, AdminRole: "ADMIN"}, stubUsers{})
	return e
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDownloadInvoice(t *testing.T) {
	e := newOrderEcho()

	rec := serve(e, http.MethodGet, "/order/invoice/1", bearer(t, 10, "BUYER"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="invoice-Ab12Cd34.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "%PDF-1.3 test", rec.Body.String())
}

func TestDownloadInvoice_Errors(t *testing.T) {
	e := newOrderEcho()

	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{"no token", "/order/invoice/1", "", http.StatusUnauthorized},
		{"bad id", "/order/invoice/x", bearer(t, 10, "BUYER"), http.StatusBadRequest},
		{"stranger", "/order/invoice/1", bearer(t, 99, "BUYER"), http.StatusForbidden},
		{"missing order", "/order/invoice/2", bearer(t, 10, "BUYER"), http.StatusNotFound},
		{"admin", "/order/invoice/1", bearer(t, 1, "ADMIN"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, tt.path, tt.auth)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestOrderRoutes_RoleGuard(t *testing.T) {
	e := newOrderEcho()

	//sellerは注文を作れない、buyerはステータスを変えられない
	rec := serve(e, http.MethodPost, "/order/create", bearer(t, 20, "SELLER"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(e, http.MethodPut, "/order/updateorderstatus/1", bearer(t, 10, "BUYER"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(e, http.MethodGet, "/order/recentorders", bearer(t, 10, "BUYER"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

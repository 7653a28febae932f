package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadOrder(o model.Order, err error) func(context.Context, int64) (model.Order, error) {
	return func(context.Context, int64) (model.Order, error) { return o, err }
}

func TestAuthorize(t *testing.T) {
	g := NewGuard("")
	owned := model.Order{ID: 1, BuyerID: 10, SellerID: 20}

	tests := []struct {
		name   string
		actor  Actor
		id     int64
		load   func(context.Context, int64) (model.Order, error)
		status int
	}{
		{"anonymous", Actor{}, 1, loadOrder(owned, nil), http.StatusUnauthorized},
		{"missing id", Actor{UserID: 20}, 0, loadOrder(owned, nil), http.StatusBadRequest},
		{"not found", Actor{UserID: 20}, 1, loadOrder(model.Order{}, repo.ErrNotFound), http.StatusNotFound},
		{"storage error", Actor{UserID: 20}, 1, loadOrder(model.Order{}, errors.New("boom")), http.StatusInternalServerError},
		{"stranger", Actor{UserID: 30, Role: model.RoleSeller}, 1, loadOrder(owned, nil), http.StatusForbidden},
		{"buyer is not seller", Actor{UserID: 10, Role: model.RoleBuyer}, 1, loadOrder(owned, nil), http.StatusForbidden},
		{"owner", Actor{UserID: 20, Role: model.RoleSeller}, 1, loadOrder(owned, nil), http.StatusOK},
		{"admin bypass", Actor{UserID: 1, Role: model.RoleAdmin}, 1, loadOrder(owned, nil), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := authorize(context.Background(), g, tt.actor, tt.id, tt.load, orderSeller)
			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, owned.ID, got.ID)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.status, StatusOf(err))
			assert.Zero(t, got.ID)
		})
	}
}

func TestAuthorize_AdminStillNeedsExistingResource(t *testing.T) {
	g := NewGuard("ADMIN")
	_, err := authorize(context.Background(), g, Actor{UserID: 1, Role: model.RoleAdmin}, 1,
		loadOrder(model.Order{}, repo.ErrNotFound), orderSeller)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGuard_CustomAdminRole(t *testing.T) {
	g := NewGuard("SUPERVISOR")
	assert.True(t, g.IsAdmin(Actor{UserID: 1, Role: "SUPERVISOR"}))
	assert.False(t, g.IsAdmin(Actor{UserID: 1, Role: model.RoleAdmin}))
	assert.Error(t, g.requireAdmin(Actor{UserID: 1, Role: model.RoleAdmin}))
}

func TestHTTPError_MatchesSentinelByStatus(t *testing.T) {
	err := internalError(errors.New("db"))
	assert.True(t, errors.Is(err, ErrInternal))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))

	assert.Equal(t, http.StatusConflict, StatusOf(ErrConflict))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))

	he, ok := AsHTTPError(validationError("bad %s", "thing"))
	require.True(t, ok)
	assert.Equal(t, "bad thing", he.Message)
}

func TestDetailsMessage(t *testing.T) {
	assert.Equal(t, "Order and tracking details updated successfully", detailsMessage(true, false, true))
	assert.Equal(t, "Payment and tracking details updated successfully", detailsMessage(false, true, true))
	assert.Equal(t, "Tracking details updated successfully", detailsMessage(false, false, true))
	assert.Equal(t, "Order details updated successfully", detailsMessage(true, true, false))
	assert.Equal(t, "Payment details updated successfully", detailsMessage(false, true, false))
}

package usecase

import (
	"context"
	"errors"
	"net/http"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// トークンから取り出した操作ユーザー
type Actor struct {
	UserID int64
	Role   model.Role
}

// 管理者ロールは設定（ADMIN_ROLE）で決まる
type Guard struct {
	adminRole model.Role
}

func NewGuard(adminRole string) Guard {
	if adminRole == "" {
		adminRole = string(model.RoleAdmin)
	}
	return Guard{adminRole: model.Role(adminRole)}
}

func (g Guard) IsAdmin(a Actor) bool {
	return a.Role == g.adminRole
}

// 管理者専用の操作
func (g Guard) requireAdmin(a Actor) error {
	if a.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !g.IsAdmin(a) {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return nil
}

// authorize はリソースを読み込み、操作ユーザーが持ち主（または管理者）かを確認する。
// id不正=400, 存在しない=404, 持ち主でない=403
func authorize[T any](ctx context.Context, g Guard, a Actor, id int64, load func(ctx context.Context, id int64) (T, error), owners ...func(T) int64) (T, error) {
	var zero T
	if a.UserID <= 0 {
		return zero, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return zero, NewHTTPError(http.StatusBadRequest, "resource id is required")
	}

	res, err := load(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return zero, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return zero, internalError(err)
	}

	if g.IsAdmin(a) {
		return res, nil
	}
	for _, owner := range owners {
		if owner(res) == a.UserID {
			return res, nil
		}
	}
	return zero, NewHTTPError(http.StatusForbidden, "you are not allowed to modify this resource")
}

func orderSeller(o model.Order) int64 { return o.SellerID }
func orderBuyer(o model.Order) int64  { return o.BuyerID }

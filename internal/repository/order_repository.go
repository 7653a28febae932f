package repository

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status *model.OrderStatus
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// 一覧（明細付き）の絞り込み。どちらか片方を指定する
type OrderDetailFilter struct {
	SellerID *int64
	BuyerID  *int64
}

type OrderRepository interface {
	//IDなどを埋める
	Create(ctx context.Context, order *model.Order) error

	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//遷移前の読み取り用（SELECT ... FOR UPDATE）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)

	//明細・支払い・配送・購入者情報を付けて1件取得
	FindDetail(ctx context.Context, orderID int64) (model.OrderDetail, error)
	//新しい順
	ListDetails(ctx context.Context, f OrderDetailFilter) ([]model.OrderDetail, error)

	//許可した列だけ部分更新。空なら何もせず0を返す
	UpdateFields(ctx context.Context, orderID int64, fields map[string]any) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	Cancel(ctx context.Context, orderID int64, reason string) error
	Delete(ctx context.Context, orderID int64) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error)
}

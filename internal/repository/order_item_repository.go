package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 注文明細。注文と同じTxの中でだけ使う
type OrderItemRepository interface {
	//order_id を埋めてまとめてINSERT
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	//管理者の注文削除用
	DeleteByOrderID(ctx context.Context, orderID int64) error
}

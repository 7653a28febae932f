package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type TrackingRepository interface {
	//order_idが既にあれば何もしない。挿入できたらtrue
	InsertIfAbsent(ctx context.Context, tracking *model.Tracking) (bool, error)
	//order_idで作成 or 更新。作成したらtrue
	Upsert(ctx context.Context, orderID int64, fields map[string]any) (model.Tracking, bool, error)

	FindByID(ctx context.Context, trackingID int64) (model.Tracking, error)
	FindByOrderID(ctx context.Context, orderID int64) (model.Tracking, error)

	UpdateFields(ctx context.Context, trackingID int64, fields map[string]any) (int64, error)
	//注文ステータス変更に合わせて配送ステータスを揃える。行がなければ0
	SetStatusByOrderID(ctx context.Context, orderID int64, status model.TrackingStatus) (int64, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}

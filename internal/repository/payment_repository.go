package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	//payment_status / payment_method / payment_type だけ更新できる
	UpdateFields(ctx context.Context, orderID int64, fields map[string]any) (int64, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}

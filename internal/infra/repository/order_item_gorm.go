package repository

import (
	"context"
	"fmt"

	"marketplace/internal/domain/model"

	"gorm.io/gorm"
)

// 1回のINSERTに入れる明細数
const orderItemBatchSize = 100

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]model.OrderItem, len(items))
	for i, it := range items {
		it.OrderID = orderID
		rows[i] = it
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&rows, orderItemBatchSize).Error; err != nil {
		return fmt.Errorf("insert order items (order %d): %w", orderID, err)
	}
	//採番されたIDを呼び出し側へ戻す
	copy(items, rows)
	return nil
}

func (r *OrderItemGormRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderItem{})
	if res.Error != nil {
		return fmt.Errorf("delete order items (order %d): %w", orderID, res.Error)
	}
	return nil
}

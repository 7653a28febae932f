package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	UpdateApproval(ctx context.Context, id int64, status model.ApprovalStatus) error
	CountByApproval(ctx context.Context, status model.ApprovalStatus) (int64, error)
}

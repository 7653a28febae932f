package repository

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
)

// 管理画面の監査ログ検索。nilの項目は絞り込まない
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64

	//created_at の範囲（両端を含む）
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	Limit  int
	Offset int
}

type AuditLogRepository interface {
	//変更と同じTxで書く
	Create(ctx context.Context, log model.AuditLog) error
	//新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}

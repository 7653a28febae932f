package repository

import (
	"context"
	"fmt"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

// 監査ログは追記のみ
func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > auditMaxLimit {
		limit = auditDefaultLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Scopes(auditFilter(f)).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}

// nilでない条件だけWHEREに足す
func auditFilter(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		conds := []struct {
			clause string
			value  any
			ok     bool
		}{
			{"actor_user_id = ?", deref(f.ActorUserID), f.ActorUserID != nil},
			{"action = ?", deref(f.Action), f.Action != nil},
			{"resource_type = ?", deref(f.ResourceType), f.ResourceType != nil},
			{"resource_id = ?", deref(f.ResourceID), f.ResourceID != nil},
			{"created_at >= ?", deref(f.CreatedFrom), f.CreatedFrom != nil},
			{"created_at <= ?", deref(f.CreatedTo), f.CreatedTo != nil},
		}
		for _, c := range conds {
			if c.ok {
				q = q.Where(c.clause, c.value)
			}
		}
		return q
	}
}

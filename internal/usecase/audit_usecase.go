package usecase

import (
	"context"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type AuditUsecase struct {
	tx    repo.TransactionManager
	guard Guard
}

func NewAuditUsecase(tx repo.TransactionManager, guard Guard) *AuditUsecase {
	return &AuditUsecase{tx: tx, guard: guard}
}

// 管理者だけが見られる
func (u *AuditUsecase) List(ctx context.Context, actor Actor, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if err := u.guard.requireAdmin(actor); err != nil {
		return nil, err
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedTo.Before(*f.CreatedFrom) {
		return nil, validationError("invalid range")
	}

	var logs []model.AuditLog
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		l, err := r.AuditLogs().List(ctx, f)
		if err != nil {
			return internalError(err)
		}
		logs = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}

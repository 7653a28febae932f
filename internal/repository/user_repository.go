package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//メール重複はErrDuplicate
	Create(ctx context.Context, user *model.User) error
	// 見つからなければErrNotFound
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// 最後のログインなど
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
	UpdateApproval(ctx context.Context, userID int64, status model.ApprovalStatus) error
	CountByRoleAndApproval(ctx context.Context, role model.Role, status model.ApprovalStatus) (int64, error)
}

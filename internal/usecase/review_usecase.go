package usecase

import (
	"context"
	"fmt"

	"marketplace/internal/domain/model"
	"marketplace/internal/notify"
	repo "marketplace/internal/repository"
)

// 管理者による商品・出品者アカウントの審査
type ReviewUsecase struct {
	tx       repo.TransactionManager
	guard    Guard
	notifier Notifier
}

func NewReviewUsecase(tx repo.TransactionManager, guard Guard, notifier Notifier) *ReviewUsecase {
	return &ReviewUsecase{tx: tx, guard: guard, notifier: orNop(notifier)}
}

// 管理画面のダッシュボードに流す集計
type DashboardStats struct {
	PendingProducts  int64            `json:"pending_products"`
	ApprovedProducts int64            `json:"approved_products"`
	PendingSellers   int64            `json:"pending_sellers"`
	OrdersByStatus   map[string]int64 `json:"orders_by_status"`
}

func approvalOf(approve bool) model.ApprovalStatus {
	if approve {
		return model.ApprovalApproved
	}
	return model.ApprovalRejected
}

// ReviewProduct は商品を承認/却下し、出品者へメール、全体へpushする。
func (u *ReviewUsecase) ReviewProduct(ctx context.Context, actor Actor, productID int64, approve bool) (model.Product, error) {
	if err := u.guard.requireAdmin(actor); err != nil {
		return model.Product{}, err
	}
	status := approvalOf(approve)

	var (
		out         model.Product
		sellerEmail string
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := authorize(ctx, u.guard, actor, productID, r.Products().FindByID)
		if err != nil {
			return err
		}
		if err := r.Products().UpdateApproval(ctx, p.ID, status); err != nil {
			return internalError(err)
		}
		if err := writeAuditFor(ctx, r, actor, model.AuditActionReviewProduct, model.AuditResourceProduct, p.ID,
			map[string]any{"approval_status": p.ApprovalStatus.String()},
			map[string]any{"approval_status": status.String()},
		); err != nil {
			return err
		}
		sellerEmail = lookupEmail(ctx, r, p.SellerID)
		p.ApprovalStatus = status
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}

	u.notifier.Mail(ctx, notify.Mail{
		To:      sellerEmail,
		Subject: fmt.Sprintf("Your product %q was %s", out.Name, status),
		Body:    fmt.Sprintf("Your product %q has been %s by the marketplace team.\n", out.Name, status),
	})
	u.notifier.Publish(ctx, notify.Event{
		Type:    notify.EventProductReviewed,
		Payload: map[string]any{"product_id": out.ID, "approval_status": status.String()},
	})
	u.publishStats(ctx)
	return out, nil
}

// ReviewAccount はアカウントを承認/却下し、本人にメールする。
func (u *ReviewUsecase) ReviewAccount(ctx context.Context, actor Actor, userID int64, approve bool) (*model.User, error) {
	if err := u.guard.requireAdmin(actor); err != nil {
		return nil, err
	}
	status := approvalOf(approve)

	var out *model.User
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := authorize(ctx, u.guard, actor, userID, r.Users().FindByID)
		if err != nil {
			return err
		}
		if err := r.Users().UpdateApproval(ctx, user.ID, status); err != nil {
			return internalError(err)
		}
		if err := writeAuditFor(ctx, r, actor, model.AuditActionReviewAccount, model.AuditResourceUser, user.ID,
			map[string]any{"approval_status": user.ApprovalStatus.String()},
			map[string]any{"approval_status": status.String()},
		); err != nil {
			return err
		}
		user.ApprovalStatus = status
		out = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Mail(ctx, notify.Mail{
		To:      out.Email,
		Subject: fmt.Sprintf("Your account was %s", status),
		Body:    fmt.Sprintf("Hello %s,\n\nYour account has been %s.\n", out.DisplayName(), status),
	})
	u.notifier.Publish(ctx, notify.Event{
		Type:    notify.EventAccountReviewed,
		Payload: map[string]any{"user_id": out.ID, "approval_status": status.String()},
		UserIDs: []int64{out.ID},
	})
	u.publishStats(ctx)
	return out, nil
}

// Stats はダッシュボード用の件数を返す。
func (u *ReviewUsecase) Stats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		if s.PendingProducts, err = r.Products().CountByApproval(ctx, model.ApprovalPending); err != nil {
			return internalError(err)
		}
		if s.ApprovedProducts, err = r.Products().CountByApproval(ctx, model.ApprovalApproved); err != nil {
			return internalError(err)
		}
		if s.PendingSellers, err = r.Users().CountByRoleAndApproval(ctx, model.RoleSeller, model.ApprovalPending); err != nil {
			return internalError(err)
		}
		counts, err := r.Orders().CountByStatus(ctx)
		if err != nil {
			return internalError(err)
		}
		s.OrdersByStatus = make(map[string]int64, len(counts))
		for st, n := range counts {
			s.OrdersByStatus[st.String()] = n
		}
		return nil
	})
	return s, err
}

// 集計の失敗は審査結果に影響させない
func (u *ReviewUsecase) publishStats(ctx context.Context) {
	stats, err := u.Stats(ctx)
	if err != nil {
		return
	}
	u.notifier.Publish(ctx, notify.Event{Type: notify.EventDashboardStats, Payload: stats})
}

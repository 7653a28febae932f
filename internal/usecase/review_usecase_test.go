package usecase_test

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReviewUsecase() (*usecase.ReviewUsecase, *TxManagerMock, *TxReposMock, *recordingNotifier) {
	repos := newTxRepos()
	tx := &TxManagerMock{Repos: repos}
	n := &recordingNotifier{}
	return usecase.NewReviewUsecase(tx, usecase.NewGuard("ADMIN"), n), tx, repos, n
}

func expectStats(repos *TxReposMock) {
	repos.products.On("CountByApproval", mock.Anything, model.ApprovalPending).Return(int64(2), nil)
	repos.products.On("CountByApproval", mock.Anything, model.ApprovalApproved).Return(int64(5), nil)
	repos.users.On("CountByRoleAndApproval", mock.Anything, model.RoleSeller, model.ApprovalPending).Return(int64(1), nil)
	repos.orders.On("CountByStatus", mock.Anything).
		Return(map[model.OrderStatus]int64{model.OrderStatusPending: 3, model.OrderStatusDelivered: 1}, nil)
}

func TestReviewProduct_RequiresAdmin(t *testing.T) {
	uc, tx, _, _ := newReviewUsecase()

	_, err := uc.ReviewProduct(context.Background(), seller, 5, true)
	assert.True(t, errors.Is(err, usecase.ErrForbidden))
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestReviewProduct_ApprovesAndBroadcasts(t *testing.T) {
	uc, tx, repos, n := newReviewUsecase()
	tx.On("WithinTx", mock.Anything).Return(nil)
	repos.products.On("FindByID", mock.Anything, int64(5)).
		Return(model.Product{ID: 5, SellerID: sellerID, Name: "Mug", ApprovalStatus: model.ApprovalPending}, nil).Once()
	repos.products.On("UpdateApproval", mock.Anything, int64(5), model.ApprovalApproved).Return(nil).Once()
	repos.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionReviewProduct && l.ResourceType == model.AuditResourceProduct
	})).Return(nil).Once()
	repos.users.On("FindByID", mock.Anything, sellerID).Return(&model.User{ID: sellerID, Email: "seller@example.com"}, nil).Once()
	expectStats(repos)

	p, err := uc.ReviewProduct(context.Background(), admin, 5, true)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, p.ApprovalStatus)

	assert.Equal(t, []string{"product_reviewed", "dashboard_stats"}, n.eventTypes())
	require.Len(t, n.mails, 1)
	assert.Equal(t, "seller@example.com", n.mails[0].To)

	stats, ok := n.events[1].Payload.(usecase.DashboardStats)
	require.True(t, ok)
	assert.Equal(t, int64(2), stats.PendingProducts)
	assert.Equal(t, int64(3), stats.OrdersByStatus["pending"])
}

func TestReviewProduct_NotFound(t *testing.T) {
	uc, tx, repos, n := newReviewUsecase()
	tx.On("WithinTx", mock.Anything).Return(nil).Once()
	repos.products.On("FindByID", mock.Anything, int64(5)).Return(nil, repo.ErrNotFound).Once()

	_, err := uc.ReviewProduct(context.Background(), admin, 5, false)
	assert.True(t, errors.Is(err, usecase.ErrNotFound))
	assert.Empty(t, n.eventTypes())
	assert.Empty(t, n.mails)
}

func TestReviewAccount_RejectsAndMailsHolder(t *testing.T) {
	uc, tx, repos, n := newReviewUsecase()
	tx.On("WithinTx", mock.Anything).Return(nil)
	repos.users.On("FindByID", mock.Anything, int64(8)).
		Return(&model.User{ID: 8, Email: "shop@example.com", FirstName: "Hana", ApprovalStatus: model.ApprovalPending}, nil).Once()
	repos.users.On("UpdateApproval", mock.Anything, int64(8), model.ApprovalRejected).Return(nil).Once()
	repos.audit.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	expectStats(repos)

	u, err := uc.ReviewAccount(context.Background(), admin, 8, false)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, u.ApprovalStatus)
	require.Len(t, n.mails, 1)
	assert.Equal(t, "shop@example.com", n.mails[0].To)
	assert.Equal(t, []string{"account_reviewed", "dashboard_stats"}, n.eventTypes())
}

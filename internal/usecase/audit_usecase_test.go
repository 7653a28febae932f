package usecase_test

import (
	"context"
	"errors"
	"testing"

	repo "marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditList(t *testing.T) {
	repos := newTxRepos()
	tx := &TxManagerMock{Repos: repos}
	uc := usecase.NewAuditUsecase(tx, usecase.NewGuard("ADMIN"))

	_, err := uc.List(context.Background(), seller, repo.AuditLogFilter{})
	assert.True(t, errors.Is(err, usecase.ErrForbidden))

	tx.On("WithinTx", mock.Anything).Return(nil).Once()
	repos.audit.On("List", mock.Anything, mock.Anything).Return(nil, nil).Once()
	logs, err := uc.List(context.Background(), admin, repo.AuditLogFilter{Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, logs)
}

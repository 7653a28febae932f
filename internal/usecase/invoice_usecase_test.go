package usecase_test

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/domain/model"
	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	got model.OrderDetail
}

func (f *fakeRenderer) Render(d model.OrderDetail) ([]byte, error) {
	f.got = d
	return []byte("%PDF-1.3"), nil
}

func TestInvoice_BuyerGetsPDF(t *testing.T) {
	repos := newTxRepos()
	tx := &TxManagerMock{Repos: repos}
	r := &fakeRenderer{}
	uc := usecase.NewInvoiceUsecase(tx, usecase.NewGuard("ADMIN"), r)
	tx.On("WithinTx", mock.Anything).Return(nil).Once()
	repos.orders.On("FindDetail", mock.Anything, int64(1)).
		Return(model.OrderDetail{Order: order(model.OrderStatusDelivered)}, nil).Once()

	f, err := uc.Invoice(context.Background(), buyer, 1)
	require.NoError(t, err)
	assert.Equal(t, "invoice-ord-uid-1.pdf", f.Filename)
	assert.Equal(t, []byte("%PDF-1.3"), f.Content)
	assert.Equal(t, "ord-uid-1", r.got.OrderUID)
}

func TestInvoice_StrangerIsForbidden(t *testing.T) {
	repos := newTxRepos()
	tx := &TxManagerMock{Repos: repos}
	uc := usecase.NewInvoiceUsecase(tx, usecase.NewGuard("ADMIN"), &fakeRenderer{})
	tx.On("WithinTx", mock.Anything).Return(nil).Once()
	repos.orders.On("FindDetail", mock.Anything, int64(1)).
		Return(model.OrderDetail{Order: order(model.OrderStatusDelivered)}, nil).Once()

	_, err := uc.Invoice(context.Background(), other, 1)
	assert.True(t, errors.Is(err, usecase.ErrForbidden))
}

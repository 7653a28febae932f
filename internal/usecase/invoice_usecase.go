package usecase

import (
	"context"

	"marketplace/internal/domain/model"
	"marketplace/internal/invoice"
	repo "marketplace/internal/repository"
)

type InvoiceRenderer interface {
	Render(d model.OrderDetail) ([]byte, error)
}

type InvoiceUsecase struct {
	tx       repo.TransactionManager
	guard    Guard
	renderer InvoiceRenderer
}

func NewInvoiceUsecase(tx repo.TransactionManager, guard Guard, renderer InvoiceRenderer) *InvoiceUsecase {
	return &InvoiceUsecase{tx: tx, guard: guard, renderer: renderer}
}

type InvoiceFile struct {
	Filename string
	Content  []byte
}

// Invoice は購入者・出品者・管理者に請求書PDFを返す。
func (u *InvoiceUsecase) Invoice(ctx context.Context, actor Actor, orderID int64) (InvoiceFile, error) {
	var detail model.OrderDetail
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := authorize(ctx, u.guard, actor, orderID, r.Orders().FindDetail,
			func(d model.OrderDetail) int64 { return d.BuyerID },
			func(d model.OrderDetail) int64 { return d.SellerID },
		)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	if err != nil {
		return InvoiceFile{}, err
	}

	pdf, err := u.renderer.Render(detail)
	if err != nil {
		return InvoiceFile{}, internalError(err)
	}
	return InvoiceFile{Filename: invoice.Filename(detail.OrderUID), Content: pdf}, nil
}

package usecase

import (
	"context"

	"marketplace/internal/notify"
)

// コミット後の通知（push / メール）。失敗は呼び出し元に返さない
type Notifier interface {
	Publish(ctx context.Context, ev notify.Event)
	Mail(ctx context.Context, m notify.Mail)
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, notify.Event) {}
func (nopNotifier) Mail(context.Context, notify.Mail)     {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// 注文IDなどの発行
type IDGenerator interface {
	OrderUID() (string, error)
	PaymentUID() string
}

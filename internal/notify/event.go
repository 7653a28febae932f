package notify

import (
	"context"
	"encoding/json"
)

// イベント種別
const (
	EventNewOrder           = "new_order"
	EventOrderStatusUpdated = "order_status_updated"
	EventOrderUpdated       = "order_updated"
	EventOrderCancelled     = "order_cancelled"
	EventTrackingUpdated    = "tracking_updated"
	EventProductReviewed    = "product_reviewed"
	EventAccountReviewed    = "account_reviewed"
	EventDashboardStats     = "dashboard_stats"
)

// リアルタイム通知。UserIDsが空なら全員に送る
type Event struct {
	Type    string  `json:"type"`
	Payload any     `json:"data,omitempty"`
	UserIDs []int64 `json:"user_ids,omitempty"`
}

func (e Event) Broadcast() bool {
	return len(e.UserIDs) == 0
}

// クライアントに届くフレーム
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func encodeFrame(typ string, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return json.Marshal(frame{Type: typ, Data: data})
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Mail struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

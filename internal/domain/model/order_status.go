package model

import "fmt"

// 注文ステータス（order_details.order_status）
type OrderStatus int

const (
	OrderStatusPending        OrderStatus = 0
	OrderStatusAccepted       OrderStatus = 1
	OrderStatusOutForDelivery OrderStatus = 2
	OrderStatusDelivered      OrderStatus = 3
	OrderStatusCancelled      OrderStatus = 4
)

func (s OrderStatus) Valid() bool {
	return s >= OrderStatusPending && s <= OrderStatusCancelled
}

// 終端（これ以上変えられない）
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusAccepted:
		return "accepted"
	case OrderStatusOutForDelivery:
		return "out_for_delivery"
	case OrderStatusDelivered:
		return "delivered"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// CanTransition は from -> to の遷移が許されるかを返す。
// 前進（スキップ可）と、終端以外からのキャンセルだけ許可。
func CanTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return to > from
}

// 支払いステータス（payments.payment_status）
type PaymentStatus int

const (
	PaymentStatusPending PaymentStatus = 0
	PaymentStatusPaid    PaymentStatus = 1
	PaymentStatusRefund  PaymentStatus = 2
)

func (s PaymentStatus) Valid() bool {
	return s >= PaymentStatusPending && s <= PaymentStatusRefund
}

func (s PaymentStatus) String() string {
	switch s {
	case PaymentStatusPending:
		return "pending"
	case PaymentStatusPaid:
		return "paid"
	case PaymentStatusRefund:
		return "refund"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// 配送ステータス（order_tracking.status）
type TrackingStatus int

const (
	TrackingStatusPending   TrackingStatus = 0
	TrackingStatusShipped   TrackingStatus = 1
	TrackingStatusInTransit TrackingStatus = 2
	TrackingStatusDelivered TrackingStatus = 3
	TrackingStatusCancelled TrackingStatus = 4
)

func (s TrackingStatus) Valid() bool {
	return s >= TrackingStatusPending && s <= TrackingStatusCancelled
}

// 画面表示用のテキスト
func (s TrackingStatus) Text() string {
	switch s {
	case TrackingStatusPending:
		return "Pending"
	case TrackingStatusShipped:
		return "Shipped"
	case TrackingStatusInTransit:
		return "In Transit"
	case TrackingStatusDelivered:
		return "Delivered"
	case TrackingStatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// 注文ステータスごとに許される配送ステータス
var allowedTracking = map[OrderStatus][]TrackingStatus{
	OrderStatusPending:        {TrackingStatusPending},
	OrderStatusAccepted:       {TrackingStatusPending, TrackingStatusShipped},
	OrderStatusOutForDelivery: {TrackingStatusShipped, TrackingStatusInTransit},
	OrderStatusDelivered:      {TrackingStatusDelivered},
	OrderStatusCancelled:      {TrackingStatusCancelled},
}

// TrackingAllowed は (order_status, tracking.status) の組み合わせが正しいかを返す。
func TrackingAllowed(order OrderStatus, tracking TrackingStatus) bool {
	for _, s := range allowedTracking[order] {
		if s == tracking {
			return true
		}
	}
	return false
}

// TrackingStatusFor は注文ステータスが変わったときの配送ステータスを返す。
// 今の値がそのまま許されるなら変えない。
func TrackingStatusFor(order OrderStatus, current TrackingStatus) TrackingStatus {
	if TrackingAllowed(order, current) {
		return current
	}
	switch order {
	case OrderStatusOutForDelivery:
		return TrackingStatusInTransit
	case OrderStatusDelivered:
		return TrackingStatusDelivered
	case OrderStatusCancelled:
		return TrackingStatusCancelled
	default:
		return TrackingStatusPending
	}
}

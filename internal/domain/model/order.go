package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 1注文 = 1購入者 -> 1出品者
type Order struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"order_id"`
	OrderUID          string          `gorm:"column:order_uid;type:varchar(64);not null;uniqueIndex" json:"order_uid"`
	BuyerID           int64           `gorm:"column:user_id;not null;index" json:"user_id"`
	SellerID          int64           `gorm:"not null;index" json:"seller_id"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status            OrderStatus     `gorm:"column:order_status;type:smallint;not null;default:0;index" json:"order_status"`
	ShippingAddressID int64           `gorm:"not null" json:"shipping_address_id"`
	BuyerNote         string          `gorm:"type:text" json:"buyer_note"`
	CancelReason      string          `gorm:"type:text" json:"cancel_reason,omitempty"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "order_details"
}

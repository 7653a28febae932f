package model

import "time"

// 注文と1対1。配送状況とは別に支払い状況を持つ
type Payment struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"payment_id"`
	OrderID       int64         `gorm:"not null;uniqueIndex" json:"order_id"`
	PaymentUID    string        `gorm:"column:payment_uid;type:varchar(64);not null;uniqueIndex" json:"payment_uid"`
	PaymentType   string        `gorm:"type:varchar(50);not null" json:"payment_type"`
	PaymentMethod string        `gorm:"type:varchar(50)" json:"payment_method"`
	Status        PaymentStatus `gorm:"column:payment_status;type:smallint;not null;default:0" json:"payment_status"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

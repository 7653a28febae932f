package model

import "time"

// 配送情報。1注文につき0か1行（order_idにunique index）
type Tracking struct {
	ID                    int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID               int64          `gorm:"not null;uniqueIndex" json:"order_id"`
	TrackingCompany       string         `gorm:"type:varchar(255)" json:"tracking_company"`
	TrackingNumber        string         `gorm:"type:varchar(255)" json:"tracking_number"`
	TrackingLink          string         `gorm:"type:text" json:"tracking_link"`
	EstimatedDeliveryFrom *time.Time     `json:"estimated_delivery_from"`
	EstimatedDeliveryTo   *time.Time     `json:"estimated_delivery_to"`
	Status                TrackingStatus `gorm:"type:smallint;not null;default:0" json:"status"`
	CreatedAt             time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Tracking) TableName() string {
	return "order_tracking"
}

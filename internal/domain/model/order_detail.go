package model

import "github.com/shopspring/decimal"

// 一覧・詳細・請求書で使う、明細などをまとめた注文
type OrderDetail struct {
	Order
	Payment      *Payment    `json:"payment,omitempty"`
	Tracking     *Tracking   `json:"tracking,omitempty"`
	BuyerName    string      `json:"buyer_name,omitempty"`
	BuyerEmail   string      `json:"buyer_email,omitempty"`
	BuyerPhone   string      `json:"buyer_phone,omitempty"`
	ShippingInfo string      `json:"shipping_info,omitempty"`
	Items        []OrderLine `json:"items"`
}

// 明細1行（商品名付き）
type OrderLine struct {
	ItemID      int64           `json:"item_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 部分更新できる列
var orderColumns = []string{"order_status", "buyer_note", "shipping_address_id"}

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if isUniqueViolation(err) {
			return repo.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	return r.find(r.db.WithContext(ctx), orderID)
}

func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), orderID)
}

func (r *OrderGormRepository) find(q *gorm.DB, orderID int64) (model.Order, error) {
	var o model.Order
	err := q.Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 注文 ⨝ 明細 ⨝ 商品 ⨝ 購入者 ⨝ 住所 ⨝ 支払い ⨝ 配送 の1行
type orderRow struct {
	OrderID           int64             `gorm:"column:order_id"`
	OrderUID          string            `gorm:"column:order_uid"`
	UserID            int64             `gorm:"column:user_id"`
	SellerID          int64             `gorm:"column:seller_id"`
	TotalAmount       decimal.Decimal   `gorm:"column:total_amount"`
	OrderStatus       model.OrderStatus `gorm:"column:order_status"`
	ShippingAddressID int64             `gorm:"column:shipping_address_id"`
	BuyerNote         *string           `gorm:"column:buyer_note"`
	CancelReason      *string           `gorm:"column:cancel_reason"`
	CreatedAt         time.Time         `gorm:"column:created_at"`
	UpdatedAt         time.Time         `gorm:"column:updated_at"`

	ItemID      *int64              `gorm:"column:item_id"`
	ProductID   *int64              `gorm:"column:product_id"`
	ProductName *string             `gorm:"column:product_name"`
	Quantity    *int64              `gorm:"column:quantity"`
	Price       decimal.NullDecimal `gorm:"column:price"`
	Subtotal    decimal.NullDecimal `gorm:"column:subtotal"`

	FirstName *string `gorm:"column:first_name"`
	LastName  *string `gorm:"column:last_name"`
	Email     *string `gorm:"column:email"`
	Phone     *string `gorm:"column:phone"`

	Street     *string `gorm:"column:street"`
	City       *string `gorm:"column:city"`
	State      *string `gorm:"column:state"`
	Country    *string `gorm:"column:country"`
	PostalCode *string `gorm:"column:postal_code"`

	PaymentID     *int64  `gorm:"column:payment_id"`
	PaymentUID    *string `gorm:"column:payment_uid"`
	PaymentType   *string `gorm:"column:payment_type"`
	PaymentMethod *string `gorm:"column:payment_method"`
	PaymentStatus *int    `gorm:"column:payment_status"`

	TrackingID            *int64     `gorm:"column:tracking_id"`
	TrackingCompany       *string    `gorm:"column:tracking_company"`
	TrackingNumber        *string    `gorm:"column:tracking_number"`
	TrackingLink          *string    `gorm:"column:tracking_link"`
	EstimatedDeliveryFrom *time.Time `gorm:"column:estimated_delivery_from"`
	EstimatedDeliveryTo   *time.Time `gorm:"column:estimated_delivery_to"`
	TrackingStatus        *int       `gorm:"column:tracking_status"`
}

const orderDetailSelect = `o.id AS order_id, o.order_uid, o.user_id, o.seller_id, o.total_amount, o.order_status,
o.shipping_address_id, o.buyer_note, o.cancel_reason, o.created_at, o.updated_at,
oi.id AS item_id, oi.product_id, p.name AS product_name, oi.quantity, oi.price, oi.subtotal,
u.first_name, u.last_name, u.email, u.phone,
a.street, a.city, a.state, a.country, a.postal_code,
pay.id AS payment_id, pay.payment_uid, pay.payment_type, pay.payment_method, pay.payment_status,
t.id AS tracking_id, t.tracking_company, t.tracking_number, t.tracking_link,
t.estimated_delivery_from, t.estimated_delivery_to, t.status AS tracking_status`

func (r *OrderGormRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("order_details AS o").
		Select(orderDetailSelect).
		Joins("LEFT JOIN order_items oi ON oi.order_id = o.id").
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Joins("LEFT JOIN users u ON u.id = o.user_id").
		Joins("LEFT JOIN user_addresses a ON a.id = o.shipping_address_id").
		Joins("LEFT JOIN payments pay ON pay.order_id = o.id").
		Joins("LEFT JOIN order_tracking t ON t.order_id = o.id")
}

func (r *OrderGormRepository) FindDetail(ctx context.Context, orderID int64) (model.OrderDetail, error) {
	var rows []orderRow
	if err := r.detailQuery(ctx).
		Where("o.id = ?", orderID).
		Order("oi.id ASC").
		Scan(&rows).Error; err != nil {
		return model.OrderDetail{}, err
	}
	details := groupOrderRows(rows)
	if len(details) == 0 {
		return model.OrderDetail{}, repo.ErrNotFound
	}
	return details[0], nil
}

func (r *OrderGormRepository) ListDetails(ctx context.Context, f repo.OrderDetailFilter) ([]model.OrderDetail, error) {
	q := r.detailQuery(ctx)
	if f.SellerID != nil {
		q = q.Where("o.seller_id = ?", *f.SellerID)
	}
	if f.BuyerID != nil {
		q = q.Where("o.user_id = ?", *f.BuyerID)
	}

	var rows []orderRow
	if err := q.Order("o.created_at DESC, o.id DESC, oi.id ASC").Scan(&rows).Error; err != nil {
		return []model.OrderDetail{}, err
	}
	return groupOrderRows(rows), nil
}

// 1注文=複数行になっている結合結果を、注文ごとにまとめる。
// 行の並び順（最初に出た順）は保つ。
func groupOrderRows(rows []orderRow) []model.OrderDetail {
	out := make([]model.OrderDetail, 0)
	index := make(map[int64]int)
	seenItems := make(map[int64]bool)

	for _, row := range rows {
		i, ok := index[row.OrderID]
		if !ok {
			out = append(out, newOrderDetail(row))
			i = len(out) - 1
			index[row.OrderID] = i
		}

		if row.ItemID == nil || seenItems[*row.ItemID] {
			continue
		}
		seenItems[*row.ItemID] = true
		out[i].Items = append(out[i].Items, model.OrderLine{
			ItemID:      *row.ItemID,
			ProductID:   deref(row.ProductID),
			ProductName: deref(row.ProductName),
			Quantity:    deref(row.Quantity),
			Price:       row.Price.Decimal,
			Subtotal:    row.Subtotal.Decimal,
		})
	}
	return out
}

func newOrderDetail(row orderRow) model.OrderDetail {
	d := model.OrderDetail{
		Order: model.Order{
			ID:                row.OrderID,
			OrderUID:          row.OrderUID,
			BuyerID:           row.UserID,
			SellerID:          row.SellerID,
			TotalAmount:       row.TotalAmount,
			Status:            row.OrderStatus,
			ShippingAddressID: row.ShippingAddressID,
			BuyerNote:         deref(row.BuyerNote),
			CancelReason:      deref(row.CancelReason),
			CreatedAt:         row.CreatedAt,
			UpdatedAt:         row.UpdatedAt,
		},
		BuyerName:  strings.TrimSpace(deref(row.FirstName) + " " + deref(row.LastName)),
		BuyerEmail: deref(row.Email),
		BuyerPhone: deref(row.Phone),
		ShippingInfo: model.Address{
			Street:     deref(row.Street),
			City:       deref(row.City),
			State:      deref(row.State),
			Country:    deref(row.Country),
			PostalCode: deref(row.PostalCode),
		}.OneLine(),
		Items: []model.OrderLine{},
	}

	if row.PaymentID != nil {
		d.Payment = &model.Payment{
			ID:            *row.PaymentID,
			OrderID:       row.OrderID,
			PaymentUID:    deref(row.PaymentUID),
			PaymentType:   deref(row.PaymentType),
			PaymentMethod: deref(row.PaymentMethod),
			Status:        model.PaymentStatus(deref(row.PaymentStatus)),
		}
	}
	if row.TrackingID != nil {
		d.Tracking = &model.Tracking{
			ID:                    *row.TrackingID,
			OrderID:               row.OrderID,
			TrackingCompany:       deref(row.TrackingCompany),
			TrackingNumber:        deref(row.TrackingNumber),
			TrackingLink:          deref(row.TrackingLink),
			EstimatedDeliveryFrom: row.EstimatedDeliveryFrom,
			EstimatedDeliveryTo:   row.EstimatedDeliveryTo,
			Status:                model.TrackingStatus(deref(row.TrackingStatus)),
		}
	}
	return d
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// 空（または許可していない列だけ）のときはSQLを発行しない
func (r *OrderGormRepository) UpdateFields(ctx context.Context, orderID int64, fields map[string]any) (int64, error) {
	cols := pickFields(fields, orderColumns...)
	if len(cols) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(cols)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("order_status", status)

	return affected(res)
}

func (r *OrderGormRepository) Cancel(ctx context.Context, orderID int64, reason string) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"order_status":  model.OrderStatusCancelled,
			"cancel_reason": reason,
		})
	return affected(res)
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, orderID)
	return affected(res)
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != nil {
		q = q.Where("order_status = ?", *f.Status)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		OrderStatus model.OrderStatus `gorm:"column:order_status"`
		N           int64             `gorm:"column:n"`
	}
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("order_status, COUNT(*) AS n").
		Group("order_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[model.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.OrderStatus] = row.N
	}
	return out, nil
}

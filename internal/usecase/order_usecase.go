package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/metrics"
	"marketplace/internal/notify"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx       repo.TransactionManager
	guard    Guard
	ids      IDGenerator
	notifier Notifier
	metrics  *metrics.Metrics
}

func NewOrderUsecase(tx repo.TransactionManager, guard Guard, ids IDGenerator, notifier Notifier, m *metrics.Metrics) *OrderUsecase {
	return &OrderUsecase{
		tx:       tx,
		guard:    guard,
		ids:      ids,
		notifier: orNop(notifier),
		metrics:  m,
	}
}

type CreateOrderItemInput struct {
	ProductID int64           `json:"product_id"`
	SellerID  int64           `json:"seller_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderInput struct {
	Items             []CreateOrderItemInput `json:"items"`
	TotalAmount       decimal.Decimal        `json:"total_amount"`
	ShippingAddressID int64                  `json:"shipping_address_id"`
	PaymentType       string                 `json:"payment_type"`
	PaymentMethod     string                 `json:"payment_method"`
	PaymentStatus     *int                   `json:"payment_status"`
	BuyerNote         string                 `json:"buyer_note"`
}

type CreateOrderOutput struct {
	Order   model.Order       `json:"order"`
	Payment model.Payment     `json:"payment"`
	Items   []model.OrderItem `json:"items"`
}

// numeric(12,2) に丸めずに入る金額か
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// 入力チェック。出品者IDと明細（小計計算済み）、合計を返す
func validateCreateOrder(in CreateOrderInput) (int64, []model.OrderItem, decimal.Decimal, error) {
	if len(in.Items) == 0 {
		return 0, nil, decimal.Zero, validationError("items must not be empty")
	}
	if in.ShippingAddressID <= 0 {
		return 0, nil, decimal.Zero, validationError("shipping_address_id is required")
	}
	if strings.TrimSpace(in.PaymentType) == "" {
		return 0, nil, decimal.Zero, validationError("payment_type is required")
	}
	if in.PaymentStatus != nil && !model.PaymentStatus(*in.PaymentStatus).Valid() {
		return 0, nil, decimal.Zero, validationError("invalid payment_status")
	}

	sellerID := in.Items[0].SellerID
	items := make([]model.OrderItem, 0, len(in.Items))
	sum := decimal.Zero
	for i, it := range in.Items {
		if it.ProductID <= 0 || it.SellerID <= 0 {
			return 0, nil, decimal.Zero, validationError("items[%d]: product_id and seller_id are required", i)
		}
		if it.Quantity <= 0 {
			return 0, nil, decimal.Zero, validationError("items[%d]: quantity must be positive", i)
		}
		if !it.Price.IsPositive() {
			return 0, nil, decimal.Zero, validationError("items[%d]: price must be positive", i)
		}
		if !isCents(it.Price) {
			return 0, nil, decimal.Zero, validationError("items[%d]: price must have at most 2 decimal places", i)
		}
		//1注文=1出品者
		if it.SellerID != sellerID {
			return 0, nil, decimal.Zero, validationError("all items in an order must belong to the same seller")
		}
		subtotal := model.LineSubtotal(it.Quantity, it.Price)
		sum = sum.Add(subtotal)
		items = append(items, model.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  subtotal,
		})
	}

	if !in.TotalAmount.IsPositive() {
		return 0, nil, decimal.Zero, validationError("total_amount must be positive")
	}
	if !isCents(in.TotalAmount) {
		return 0, nil, decimal.Zero, validationError("total_amount must have at most 2 decimal places")
	}
	if !in.TotalAmount.Equal(sum) {
		return 0, nil, decimal.Zero, validationError("total_amount %s does not match items total %s", in.TotalAmount.StringFixed(2), sum.StringFixed(2))
	}
	return sellerID, items, sum, nil
}

// CreateOrder は注文・支払い・明細を1トランザクションで作る。
func (u *OrderUsecase) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (CreateOrderOutput, error) {
	if actor.UserID <= 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	sellerID, items, total, err := validateCreateOrder(in)
	if err != nil {
		return CreateOrderOutput{}, err
	}

	orderUID, err := u.ids.OrderUID()
	if err != nil {
		return CreateOrderOutput{}, internalError(err)
	}
	paymentStatus := model.PaymentStatusPending
	if in.PaymentStatus != nil {
		paymentStatus = model.PaymentStatus(*in.PaymentStatus)
	}

	var out CreateOrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//配送先は購入者本人の住所
		if _, err := authorize(ctx, u.guard, actor, in.ShippingAddressID, r.Addresses().FindByID,
			func(a model.Address) int64 { return a.UserID }); err != nil {
			return err
		}

		order := model.Order{
			OrderUID:          orderUID,
			BuyerID:           actor.UserID,
			SellerID:          sellerID,
			TotalAmount:       total,
			Status:            model.OrderStatusPending,
			ShippingAddressID: in.ShippingAddressID,
			BuyerNote:         strings.TrimSpace(in.BuyerNote),
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return internalError(err)
		}

		payment := model.Payment{
			OrderID:       order.ID,
			PaymentUID:    u.ids.PaymentUID(),
			PaymentType:   strings.TrimSpace(in.PaymentType),
			PaymentMethod: strings.TrimSpace(in.PaymentMethod),
			Status:        paymentStatus,
		}
		if err := r.Payments().Create(ctx, &payment); err != nil {
			return internalError(err)
		}

		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return internalError(err)
		}

		out = CreateOrderOutput{Order: order, Payment: payment, Items: items}
		return nil
	})
	if err != nil {
		return CreateOrderOutput{}, err
	}

	u.metrics.OrderCreated()
	u.notifier.Publish(ctx, notify.Event{
		Type:    notify.EventNewOrder,
		Payload: map[string]any{"order_id": out.Order.ID, "order_uid": out.Order.OrderUID, "total_amount": out.Order.TotalAmount},
		UserIDs: []int64{out.Order.SellerID},
	})
	return out, nil
}

// GetOrder は購入者（または管理者）に注文詳細を返す。
// 出品者は recentorders を使う。それ以外には「存在しない扱い」にする
func (u *OrderUsecase) GetOrder(ctx context.Context, actor Actor, orderID int64) (model.OrderDetail, error) {
	if actor.UserID <= 0 {
		return model.OrderDetail{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.OrderDetail{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out model.OrderDetail
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Orders().FindDetail(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return internalError(err)
		}
		if !u.guard.IsAdmin(actor) && d.BuyerID != actor.UserID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		out = d
		return nil
	})
	if err != nil {
		return model.OrderDetail{}, err
	}
	return out, nil
}

// 出品者が受けた注文（新しい順）
func (u *OrderUsecase) ListForSeller(ctx context.Context, actor Actor) ([]model.OrderDetail, error) {
	if actor.UserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.listDetails(ctx, repo.OrderDetailFilter{SellerID: &actor.UserID})
}

// 購入者の注文履歴（新しい順）
func (u *OrderUsecase) ListForBuyer(ctx context.Context, actor Actor) ([]model.OrderDetail, error) {
	if actor.UserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.listDetails(ctx, repo.OrderDetailFilter{BuyerID: &actor.UserID})
}

func (u *OrderUsecase) listDetails(ctx context.Context, f repo.OrderDetailFilter) ([]model.OrderDetail, error) {
	var out []model.OrderDetail
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		list, err := r.Orders().ListDetails(ctx, f)
		if err != nil {
			return internalError(err)
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.OrderDetail{}
	}
	return out, nil
}

// CancelOrderByUser は購入者・出品者・管理者が注文をキャンセルする。
// 配送済みはキャンセル不可（返金は payment_status=refund で扱う）
func (u *OrderUsecase) CancelOrderByUser(ctx context.Context, actor Actor, orderID int64, reason string) (model.Order, error) {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < 3 {
		return model.Order{}, validationError("cancel reason must be at least 3 characters")
	}

	var (
		out          model.Order
		before       model.OrderStatus
		counterEmail string
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := authorize(ctx, u.guard, actor, orderID, r.Orders().FindByIDForUpdate, orderBuyer, orderSeller)
		if err != nil {
			return err
		}
		switch o.Status {
		case model.OrderStatusDelivered:
			return validationError("delivered orders cannot be cancelled")
		case model.OrderStatusCancelled:
			return validationError("order is already cancelled")
		}

		if err := r.Orders().Cancel(ctx, o.ID, reason); err != nil {
			return internalError(err)
		}
		if _, err := r.Tracking().SetStatusByOrderID(ctx, o.ID, model.TrackingStatusCancelled); err != nil {
			return internalError(err)
		}
		if err := writeAudit(ctx, r, actor, model.AuditActionCancelOrder, o.ID,
			map[string]any{"order_status": o.Status.String()},
			map[string]any{"order_status": model.OrderStatusCancelled.String(), "cancel_reason": reason},
		); err != nil {
			return err
		}

		//相手側（購入者がキャンセルしたら出品者）にメール
		counterID := o.BuyerID
		if actor.UserID == o.BuyerID {
			counterID = o.SellerID
		}
		counterEmail = lookupEmail(ctx, r, counterID)

		before = o.Status
		o.Status = model.OrderStatusCancelled
		o.CancelReason = reason
		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	u.metrics.OrderTransition(before.String(), out.Status.String())
	u.notifier.Publish(ctx, notify.Event{
		Type:    notify.EventOrderCancelled,
		Payload: map[string]any{"order_id": out.ID, "order_uid": out.OrderUID, "cancel_reason": out.CancelReason},
		UserIDs: []int64{out.BuyerID, out.SellerID},
	})
	u.notifier.Mail(ctx, notify.Mail{
		To:      counterEmail,
		Subject: fmt.Sprintf("Order %s cancelled", out.OrderUID),
		Body:    fmt.Sprintf("Order %s has been cancelled.\nReason: %s\n", out.OrderUID, out.CancelReason),
	})
	return out, nil
}

// DeleteOrder は管理者が注文と付随する行をまとめて消す。
func (u *OrderUsecase) DeleteOrder(ctx context.Context, actor Actor, orderID int64) error {
	if err := u.guard.requireAdmin(actor); err != nil {
		return err
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := authorize(ctx, u.guard, actor, orderID, r.Orders().FindByIDForUpdate)
		if err != nil {
			return err
		}
		if err := r.Tracking().DeleteByOrderID(ctx, o.ID); err != nil {
			return internalError(err)
		}
		if err := r.Payments().DeleteByOrderID(ctx, o.ID); err != nil {
			return internalError(err)
		}
		if err := r.OrderItems().DeleteByOrderID(ctx, o.ID); err != nil {
			return internalError(err)
		}
		if err := r.Orders().Delete(ctx, o.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return internalError(err)
		}
		return writeAudit(ctx, r, actor, model.AuditActionDeleteOrder, o.ID,
			map[string]any{"order_uid": o.OrderUID, "order_status": o.Status.String()}, nil)
	})
}

type AdminOrderList struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 管理者用の注文一覧
func (u *OrderUsecase) AdminList(ctx context.Context, actor Actor, f repo.AdminOrderListFilter) (AdminOrderList, error) {
	if err := u.guard.requireAdmin(actor); err != nil {
		return AdminOrderList{}, err
	}
	// page/limitの最低限チェック
	if f.Page < 1 {
		return AdminOrderList{}, validationError("invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderList{}, validationError("invalid limit")
	}
	if f.Status != nil && !f.Status.Valid() {
		return AdminOrderList{}, validationError("invalid status")
	}

	var out AdminOrderList
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return internalError(err)
		}
		out = AdminOrderList{Items: orders, Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})
	if err != nil {
		return AdminOrderList{}, err
	}
	return out, nil
}

// 監査ログを書く（before/afterはJSON文字列で保存）
func writeAudit(ctx context.Context, r repo.TxRepos, actor Actor, action model.AuditAction, orderID int64, before, after any) error {
	return writeAuditFor(ctx, r, actor, action, model.AuditResourceOrder, orderID, before, after)
}

func writeAuditFor(ctx context.Context, r repo.TxRepos, actor Actor, action model.AuditAction, resource model.AuditResourceType, id int64, before, after any) error {
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actor.UserID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   id,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    time.Now(),
	}); err != nil {
		return internalError(err)
	}
	return nil
}

// 通知先のメール。取れなければ空（メールは送らない）
func lookupEmail(ctx context.Context, r repo.TxRepos, userID int64) string {
	user, err := r.Users().FindByID(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.Email
}

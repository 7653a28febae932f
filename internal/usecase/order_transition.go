package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/notify"
	repo "marketplace/internal/repository"
)

// UpdateOrderStatus は出品者（または管理者）が注文ステータスを進める。
// 配送情報があれば、新しいステータスに合わせて配送ステータスも揃える。
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, actor Actor, orderID int64, newStatus int) (model.Order, error) {
	//読む前に弾く
	to := model.OrderStatus(newStatus)
	if !to.Valid() {
		return model.Order{}, validationError("invalid order status")
	}

	var (
		out        model.Order
		from       model.OrderStatus
		buyerEmail string
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := authorize(ctx, u.guard, actor, orderID, r.Orders().FindByIDForUpdate, orderSeller)
		if err != nil {
			return err
		}
		if o.Status == to {
			return validationError("No order updated (possibly same status)")
		}
		if !model.CanTransition(o.Status, to) {
			return validationError("cannot change order status from %s to %s", o.Status, to)
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, to); err != nil {
			return internalError(err)
		}
		if err := syncTracking(ctx, r, o.ID, to); err != nil {
			return err
		}
		if err := writeAudit(ctx, r, actor, model.AuditActionUpdateOrderStatus, o.ID,
			map[string]any{"order_status": o.Status.String()},
			map[string]any{"order_status": to.String()},
		); err != nil {
			return err
		}

		buyerEmail = lookupEmail(ctx, r, o.BuyerID)
		from = o.Status
		o.Status = to
		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	u.afterStatusChange(ctx, out, from, buyerEmail)
	return out, nil
}

// 既存の配送行を注文ステータスに合わせる（行がなければ何もしない）
func syncTracking(ctx context.Context, r repo.TxRepos, orderID int64, status model.OrderStatus) error {
	t, err := r.Tracking().FindByOrderID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return internalError(err)
	}
	next := model.TrackingStatusFor(status, t.Status)
	if next == t.Status {
		return nil
	}
	if _, err := r.Tracking().SetStatusByOrderID(ctx, orderID, next); err != nil {
		return internalError(err)
	}
	return nil
}

func (u *OrderUsecase) afterStatusChange(ctx context.Context, o model.Order, from model.OrderStatus, buyerEmail string) {
	u.metrics.OrderTransition(from.String(), o.Status.String())
	u.notifier.Publish(ctx, notify.Event{
		Type:    notify.EventOrderStatusUpdated,
		Payload: map[string]any{"order_id": o.ID, "order_uid": o.OrderUID, "order_status": o.Status, "status_text": o.Status.String()},
		UserIDs: []int64{o.BuyerID, o.SellerID},
	})
	u.notifier.Mail(ctx, notify.Mail{
		To:      buyerEmail,
		Subject: fmt.Sprintf("Your order %s is now %s", o.OrderUID, o.Status),
		Body:    fmt.Sprintf("The status of your order %s changed from %s to %s.\n", o.OrderUID, from, o.Status),
	})
}

type OrderPatch struct {
	OrderStatus       *int    `json:"order_status"`
	BuyerNote         *string `json:"buyer_note"`
	ShippingAddressID *int64  `json:"shipping_address_id"`
}

func (p OrderPatch) fields() map[string]any {
	f := map[string]any{}
	if p.OrderStatus != nil {
		f["order_status"] = model.OrderStatus(*p.OrderStatus)
	}
	if p.BuyerNote != nil {
		f["buyer_note"] = strings.TrimSpace(*p.BuyerNote)
	}
	if p.ShippingAddressID != nil {
		f["shipping_address_id"] = *p.ShippingAddressID
	}
	return f
}

type PaymentPatch struct {
	PaymentStatus *int    `json:"payment_status"`
	PaymentMethod *string `json:"payment_method"`
	PaymentType   *string `json:"payment_type"`
}

func (p PaymentPatch) fields() map[string]any {
	f := map[string]any{}
	if p.PaymentStatus != nil {
		f["payment_status"] = model.PaymentStatus(*p.PaymentStatus)
	}
	if p.PaymentMethod != nil && strings.TrimSpace(*p.PaymentMethod) != "" {
		f["payment_method"] = strings.TrimSpace(*p.PaymentMethod)
	}
	if p.PaymentType != nil && strings.TrimSpace(*p.PaymentType) != "" {
		f["payment_type"] = strings.TrimSpace(*p.PaymentType)
	}
	return f
}

type TrackingPatch struct {
	TrackingCompany       *string    `json:"tracking_company"`
	TrackingNumber        *string    `json:"tracking_number"`
	TrackingLink          *string    `json:"tracking_link"`
	EstimatedDeliveryFrom *time.Time `json:"estimated_delivery_from"`
	EstimatedDeliveryTo   *time.Time `json:"estimated_delivery_to"`
	Status                *int       `json:"status"`
}

// 空文字は「指定なし」
func (p TrackingPatch) fields() map[string]any {
	f := map[string]any{}
	put := func(key string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			f[key] = strings.TrimSpace(*v)
		}
	}
	put("tracking_company", p.TrackingCompany)
	put("tracking_number", p.TrackingNumber)
	put("tracking_link", p.TrackingLink)
	if p.EstimatedDeliveryFrom != nil {
		f["estimated_delivery_from"] = *p.EstimatedDeliveryFrom
	}
	if p.EstimatedDeliveryTo != nil {
		f["estimated_delivery_to"] = *p.EstimatedDeliveryTo
	}
	if p.Status != nil {
		f["status"] = model.TrackingStatus(*p.Status)
	}
	return f
}

func (p TrackingPatch) validate() error {
	if p.Status != nil && !model.TrackingStatus(*p.Status).Valid() {
		return validationError("invalid tracking status")
	}
	if p.EstimatedDeliveryFrom != nil && p.EstimatedDeliveryTo != nil && p.EstimatedDeliveryTo.Before(*p.EstimatedDeliveryFrom) {
		return validationError("estimated_delivery_to must not be before estimated_delivery_from")
	}
	return nil
}

type UpdateDetailsInput struct {
	Order    OrderPatch
	Payment  PaymentPatch
	Tracking TrackingPatch
}

type UpdateDetailsResult struct {
	OrderUpdated    bool            `json:"order_updated"`
	PaymentUpdated  bool            `json:"payment_updated"`
	TrackingUpdated bool            `json:"tracking_updated"`
	TrackingCreated bool            `json:"tracking_created"`
	Tracking        *model.Tracking `json:"tracking,omitempty"`
	Message         string          `json:"-"`
}

// 何を更新したかで返すメッセージを変える
func detailsMessage(order, payment, tracking bool) string {
	switch {
	case tracking && order:
		return "Order and tracking details updated successfully"
	case tracking && payment:
		return "Payment and tracking details updated successfully"
	case tracking:
		return "Tracking details updated successfully"
	case order:
		return "Order details updated successfully"
	default:
		return "Payment details updated successfully"
	}
}

// UpdateOrderDetails は注文・支払い・配送の部分更新を1トランザクションで行う。
// 配送は order_id で upsert する。
func (u *OrderUsecase) UpdateOrderDetails(ctx context.Context, actor Actor, orderID int64, in UpdateDetailsInput) (UpdateDetailsResult, error) {
	orderFields := in.Order.fields()
	paymentFields := in.Payment.fields()
	trackingFields := in.Tracking.fields()

	hasOrder := len(orderFields) > 0
	hasPayment := len(paymentFields) > 0
	hasTracking := len(trackingFields) > 0
	if !hasOrder && !hasPayment && !hasTracking {
		return UpdateDetailsResult{}, validationError("No valid data provided to update")
	}

	//読む前に弾く
	if in.Order.OrderStatus != nil && !model.OrderStatus(*in.Order.OrderStatus).Valid() {
		return UpdateDetailsResult{}, validationError("invalid order status")
	}
	if in.Payment.PaymentStatus != nil && !model.PaymentStatus(*in.Payment.PaymentStatus).Valid() {
		return UpdateDetailsResult{}, validationError("invalid payment_status")
	}
	if err := in.Tracking.validate(); err != nil {
		return UpdateDetailsResult{}, err
	}

	var (
		res        UpdateDetailsResult
		updated    model.Order
		from       model.OrderStatus
		buyerEmail string
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := authorize(ctx, u.guard, actor, orderID, r.Orders().FindByIDForUpdate, orderSeller)
		if err != nil {
			return err
		}
		from = o.Status

		//更新後の注文ステータス
		status := o.Status
		if in.Order.OrderStatus != nil {
			to := model.OrderStatus(*in.Order.OrderStatus)
			if to == o.Status {
				delete(orderFields, "order_status")
			} else if !model.CanTransition(o.Status, to) {
				return validationError("cannot change order status from %s to %s", o.Status, to)
			}
			status = to
		}
		//同じステータスだけなら書くものが無い
		hasOrder = len(orderFields) > 0
		if !hasOrder && !hasPayment && !hasTracking {
			return validationError("No valid data provided to update")
		}
		if in.Order.ShippingAddressID != nil && *in.Order.ShippingAddressID != o.ShippingAddressID {
			if _, err := authorize(ctx, u.guard, Actor{UserID: o.BuyerID}, *in.Order.ShippingAddressID, r.Addresses().FindByID,
				func(a model.Address) int64 { return a.UserID }); err != nil {
				return err
			}
		}

		//更新後の配送ステータス
		current, err := r.Tracking().FindByOrderID(ctx, o.ID)
		exists := err == nil
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return internalError(err)
		}
		if hasTracking {
			next := model.TrackingStatusPending
			if exists {
				next = current.Status
			}
			if in.Tracking.Status != nil {
				next = model.TrackingStatus(*in.Tracking.Status)
			} else if !exists || status != o.Status {
				next = model.TrackingStatusFor(status, next)
				trackingFields["status"] = next
			}
			if !model.TrackingAllowed(status, next) {
				return validationError("tracking status %q is not allowed while the order is %s", next.Text(), status)
			}
		}

		if hasOrder {
			if _, err := r.Orders().UpdateFields(ctx, o.ID, orderFields); err != nil {
				return internalError(err)
			}
		}
		if hasPayment {
			if _, err := r.Payments().UpdateFields(ctx, o.ID, paymentFields); err != nil {
				return internalError(err)
			}
		}
		if hasTracking {
			t, created, err := r.Tracking().Upsert(ctx, o.ID, trackingFields)
			if err != nil {
				return internalError(err)
			}
			res.Tracking = &t
			res.TrackingCreated = created
		} else if status != o.Status {
			if err := syncTracking(ctx, r, o.ID, status); err != nil {
				return err
			}
		}

		if status != o.Status {
			if err := writeAudit(ctx, r, actor, model.AuditActionUpdateOrderStatus, o.ID,
				map[string]any{"order_status": o.Status.String()},
				map[string]any{"order_status": status.String()},
			); err != nil {
				return err
			}
			buyerEmail = lookupEmail(ctx, r, o.BuyerID)
		}

		o.Status = status
		updated = o
		return nil
	})
	if err != nil {
		return UpdateDetailsResult{}, err
	}

	res.OrderUpdated = hasOrder
	res.PaymentUpdated = hasPayment
	res.TrackingUpdated = hasTracking
	res.Message = detailsMessage(hasOrder, hasPayment, hasTracking)

	if updated.Status != from {
		u.afterStatusChange(ctx, updated, from, buyerEmail)
	} else {
		u.notifier.Publish(ctx, notify.Event{
			Type:    notify.EventOrderUpdated,
			Payload: map[string]any{"order_id": updated.ID, "order_uid": updated.OrderUID, "message": res.Message},
			UserIDs: []int64{updated.BuyerID, updated.SellerID},
		})
	}
	return res, nil
}

package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/notify"
	repo "marketplace/internal/repository"
)

type TrackingUsecase struct {
	tx       repo.TransactionManager
	guard    Guard
	notifier Notifier
}

func NewTrackingUsecase(tx repo.TransactionManager, guard Guard, notifier Notifier) *TrackingUsecase {
	return &TrackingUsecase{tx: tx, guard: guard, notifier: orNop(notifier)}
}

type AddTrackingInput struct {
	OrderID               int64      `json:"order_id"`
	TrackingCompany       string     `json:"tracking_company"`
	TrackingNumber        string     `json:"tracking_number"`
	TrackingLink          string     `json:"tracking_link"`
	EstimatedDeliveryFrom *time.Time `json:"estimated_delivery_from"`
	EstimatedDeliveryTo   *time.Time `json:"estimated_delivery_to"`
	Status                *int       `json:"status"`
}

// 画面用に status_text を付ける
type TrackingView struct {
	model.Tracking
	StatusText string `json:"status_text"`
}

func toTrackingView(t model.Tracking) TrackingView {
	return TrackingView{Tracking: t, StatusText: t.Status.Text()}
}

// AddTracking は配送情報を新規登録する。既にあれば409（更新APIを使う）。
func (u *TrackingUsecase) AddTracking(ctx context.Context, actor Actor, in AddTrackingInput) (TrackingView, error) {
	in.TrackingCompany = strings.TrimSpace(in.TrackingCompany)
	in.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
	in.TrackingLink = strings.TrimSpace(in.TrackingLink)
	if in.OrderID <= 0 || in.TrackingCompany == "" || in.TrackingNumber == "" || in.TrackingLink == "" {
		return TrackingView{}, validationError("order_id, tracking_company, tracking_number and tracking_link are required")
	}
	patch := TrackingPatch{EstimatedDeliveryFrom: in.EstimatedDeliveryFrom, EstimatedDeliveryTo: in.EstimatedDeliveryTo, Status: in.Status}
	if err := patch.validate(); err != nil {
		return TrackingView{}, err
	}

	var (
		out   model.Tracking
		order model.Order
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := authorize(ctx, u.guard, actor, in.OrderID, r.Orders().FindByIDForUpdate, orderSeller)
		if err != nil {
			return err
		}

		status := model.TrackingStatusFor(o.Status, model.TrackingStatusPending)
		if in.Status != nil {
			status = model.TrackingStatus(*in.Status)
		}
		if !model.TrackingAllowed(o.Status, status) {
			return validationError("tracking status %q is not allowed while the order is %s", status.Text(), o.Status)
		}

		t := model.Tracking{
			OrderID:               o.ID,
			TrackingCompany:       in.TrackingCompany,
			TrackingNumber:        in.TrackingNumber,
			TrackingLink:          in.TrackingLink,
			EstimatedDeliveryFrom: in.EstimatedDeliveryFrom,
			EstimatedDeliveryTo:   in.EstimatedDeliveryTo,
			Status:                status,
		}
		inserted, err := r.Tracking().InsertIfAbsent(ctx, &t)
		if err != nil {
			return internalError(err)
		}
		if !inserted {
			return NewHTTPError(http.StatusConflict, "Tracking info already exists for this order. Use update API.")
		}
		out = t
		order = o
		return nil
	})
	if err != nil {
		return TrackingView{}, err
	}

	u.publish(ctx, order, out)
	return toTrackingView(out), nil
}

// GetTracking は購入者・出品者・管理者に配送情報を返す。
func (u *TrackingUsecase) GetTracking(ctx context.Context, actor Actor, orderID int64) (TrackingView, error) {
	var out model.Tracking
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := authorize(ctx, u.guard, actor, orderID, r.Orders().FindByID, orderBuyer, orderSeller); err != nil {
			return err
		}
		t, err := r.Tracking().FindByOrderID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "tracking info not found for this order")
		}
		if err != nil {
			return internalError(err)
		}
		out = t
		return nil
	})
	if err != nil {
		return TrackingView{}, err
	}
	return toTrackingView(out), nil
}

// UpdateTracking は配送行の持ち主（その行の注文の出品者）だけが更新できる。
func (u *TrackingUsecase) UpdateTracking(ctx context.Context, actor Actor, trackingID int64, patch TrackingPatch) (TrackingView, error) {
	if trackingID <= 0 {
		return TrackingView{}, NewHTTPError(http.StatusBadRequest, "resource id is required")
	}
	fields := patch.fields()
	if len(fields) == 0 {
		return TrackingView{}, validationError("No valid data provided to update")
	}
	if err := patch.validate(); err != nil {
		return TrackingView{}, err
	}

	var (
		out   model.Tracking
		order model.Order
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Tracking().FindByID(ctx, trackingID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return internalError(err)
		}

		//権限はクライアントが送るorder_idではなく、行の注文で見る
		o, err := authorize(ctx, u.guard, actor, t.OrderID, r.Orders().FindByIDForUpdate, orderSeller)
		if err != nil {
			return err
		}
		if patch.Status != nil && !model.TrackingAllowed(o.Status, model.TrackingStatus(*patch.Status)) {
			return validationError("tracking status %q is not allowed while the order is %s", model.TrackingStatus(*patch.Status).Text(), o.Status)
		}

		if _, err := r.Tracking().UpdateFields(ctx, t.ID, fields); err != nil {
			return internalError(err)
		}
		updated, err := r.Tracking().FindByID(ctx, t.ID)
		if err != nil {
			return internalError(err)
		}
		out = updated
		order = o
		return nil
	})
	if err != nil {
		return TrackingView{}, err
	}

	u.publish(ctx, order, out)
	return toTrackingView(out), nil
}

func (u *TrackingUsecase) publish(ctx context.Context, o model.Order, t model.Tracking) {
	u.notifier.Publish(ctx, notify.Event{
		Type:    notify.EventTrackingUpdated,
		Payload: map[string]any{"order_id": o.ID, "order_uid": o.OrderUID, "tracking": toTrackingView(t)},
		UserIDs: []int64{o.BuyerID, o.SellerID},
	})
}

package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"
)

type AddressDTO struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	Name       string  `json:"name"`
	Street     string  `json:"street"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Country    string  `json:"country"`
	PostalCode string  `json:"postal_code"`
	Phone      string  `json:"phone"`
	IsDefault  bool    `json:"is_default"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  *string `json:"updated_at,omitempty"`
}

type AddressRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Street     string `json:"street" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=255"`
	State      string `json:"state" validate:"max=100"`
	Country    string `json:"country" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Phone      string `json:"phone" validate:"max=30"`
}

func (r AddressRequest) valid() bool {
	for _, s := range []string{r.Name, r.Street, r.City, r.Country, r.PostalCode} {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

type AddressUsecase struct {
	addresses repository.AddressRepository
	guard     Guard
}

func NewAddressUsecase(addresses repository.AddressRepository, guard Guard) *AddressUsecase {
	return &AddressUsecase{addresses: addresses, guard: guard}
}

func (u *AddressUsecase) List(ctx context.Context, actor Actor) ([]AddressDTO, error) {
	if actor.UserID <= 0 {
		return nil, ErrUnauthorized
	}

	list, err := u.addresses.ListByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, internalError(err)
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

func (u *AddressUsecase) Create(ctx context.Context, actor Actor, req AddressRequest) (AddressDTO, error) {
	if actor.UserID <= 0 {
		return AddressDTO{}, ErrUnauthorized
	}
	//入力チェック
	if !req.valid() {
		return AddressDTO{}, validationError("name, street, city, country and postal_code are required")
	}

	now := time.Now()
	created, err := u.addresses.Create(ctx, model.Address{
		UserID:     actor.UserID,
		Name:       strings.TrimSpace(req.Name),
		Street:     strings.TrimSpace(req.Street),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		Country:    strings.TrimSpace(req.Country),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Phone:      strings.TrimSpace(req.Phone),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return AddressDTO{}, internalError(err)
	}

	return toAddressDTO(&created), nil
}

// 所有チェック（本人のみ）
func (u *AddressUsecase) owned(ctx context.Context, actor Actor, addressID int64) (model.Address, error) {
	return authorize(ctx, u.guard, actor, addressID, u.addresses.FindByID,
		func(a model.Address) int64 { return a.UserID })
}

func (u *AddressUsecase) Update(ctx context.Context, actor Actor, addressID int64, req AddressRequest) error {
	if !req.valid() {
		return validationError("name, street, city, country and postal_code are required")
	}
	if _, err := u.owned(ctx, actor, addressID); err != nil {
		return err
	}

	a := model.Address{
		ID:         addressID,
		Name:       strings.TrimSpace(req.Name),
		Street:     strings.TrimSpace(req.Street),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		Country:    strings.TrimSpace(req.Country),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Phone:      strings.TrimSpace(req.Phone),
		UpdatedAt:  time.Now(),
	}
	if err := u.addresses.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return internalError(err)
	}
	return nil
}

func (u *AddressUsecase) Delete(ctx context.Context, actor Actor, addressID int64) error {
	if _, err := u.owned(ctx, actor, addressID); err != nil {
		return err
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		if errors.Is(err, repository.ErrInUse) {
			return &HTTPError{Status: http.StatusConflict, Message: "address is used by an order", Err: ErrConflict}
		}
		return internalError(err)
	}
	return nil
}

func (u *AddressUsecase) SetDefault(ctx context.Context, actor Actor, addressID int64) error {
	a, err := u.owned(ctx, actor, addressID)
	if err != nil {
		return err
	}

	//user内でdefaultは1つ
	if err := u.addresses.SetDefault(ctx, a.UserID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return internalError(err)
	}
	return nil
}

func toAddressDTO(a *model.Address) AddressDTO {
	dto := AddressDTO{
		ID:         a.ID,
		UserID:     a.UserID,
		Name:       a.Name,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		Country:    a.Country,
		PostalCode: a.PostalCode,
		Phone:      a.Phone,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
	t := a.UpdatedAt.Format(time.RFC3339)
	dto.UpdatedAt = &t
	return dto
}

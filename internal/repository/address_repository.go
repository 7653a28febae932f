package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 配送先住所。注文のshipping_address_idから参照される
type AddressRepository interface {
	//IDを埋めて返す
	Create(ctx context.Context, address model.Address) (model.Address, error)
	//defaultが先頭
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)
	FindByID(ctx context.Context, addressID int64) (model.Address, error)
	Update(ctx context.Context, address model.Address) error
	//注文が参照していればErrInUse
	Delete(ctx context.Context, addressID int64) error
	SetDefault(ctx context.Context, userID, addressID int64) error
}

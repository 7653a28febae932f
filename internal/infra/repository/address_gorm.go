package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

// Updateで書き換える列（user_id / is_default は対象外）
var addressColumns = []string{"name", "street", "city", "state", "country", "postal_code", "phone", "updated_at"}

type addressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

func (r *addressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	if err := r.db.WithContext(ctx).Create(&address).Error; err != nil {
		return model.Address{}, err
	}
	return address, nil
}

func (r *addressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	list := []model.Address{}
	err := r.db.WithContext(ctx).
		Where(&model.Address{UserID: userID}).
		Order("is_default DESC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *addressGormRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	var a model.Address
	switch err := r.db.WithContext(ctx).First(&a, addressID).Error; {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.Address{}, repo.ErrNotFound
	case err != nil:
		return model.Address{}, err
	}
	return a, nil
}

func (r *addressGormRepository) Update(ctx context.Context, address model.Address) error {
	res := r.db.WithContext(ctx).
		Model(&model.Address{ID: address.ID}).
		Select(addressColumns).
		Updates(&address)
	return affected(res)
}

func (r *addressGormRepository) Delete(ctx context.Context, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.Order{}).
			Where("shipping_address_id = ?", addressID).
			Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return repo.ErrInUse
		}
		return affected(tx.Delete(&model.Address{}, addressID))
	})
}

// defaultは1ユーザー1件。外してから付け直す
func (r *addressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Address{}).
			Where("user_id = ? AND is_default", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return affected(tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Update("is_default", true))
	})
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 更新できる列
var trackingColumns = []string{
	"tracking_company",
	"tracking_number",
	"tracking_link",
	"estimated_delivery_from",
	"estimated_delivery_to",
	"status",
}

type TrackingGormRepository struct {
	db *gorm.DB
}

func NewTrackingGormRepository(db *gorm.DB) *TrackingGormRepository {
	return &TrackingGormRepository{db: db}
}

// INSERT ... ON CONFLICT (order_id) DO NOTHING
func (r *TrackingGormRepository) InsertIfAbsent(ctx context.Context, t *model.Tracking) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(t)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type upsertResult struct {
	ID       int64 `gorm:"column:id"`
	Inserted bool  `gorm:"column:inserted"`
}

// INSERT ... ON CONFLICT (order_id) DO UPDATE
// xmax = 0 なら新規行
func (r *TrackingGormRepository) Upsert(ctx context.Context, orderID int64, fields map[string]any) (model.Tracking, bool, error) {
	cols := pickFields(fields, trackingColumns...)
	now := time.Now()

	names := []string{"order_id"}
	args := []any{orderID}
	sets := make([]string, 0, len(cols)+1)
	for _, k := range sortedKeys(cols) {
		names = append(names, k)
		args = append(args, cols[k])
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", k, k))
	}
	names = append(names, "created_at", "updated_at")
	args = append(args, now, now)
	sets = append(sets, "updated_at = EXCLUDED.updated_at")

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	sql := fmt.Sprintf(
		"INSERT INTO order_tracking (%s) VALUES (%s) ON CONFLICT (order_id) DO UPDATE SET %s RETURNING id, (xmax = 0) AS inserted",
		strings.Join(names, ", "), placeholders, strings.Join(sets, ", "),
	)

	var out upsertResult
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&out).Error; err != nil {
		return model.Tracking{}, false, err
	}

	t, err := r.FindByID(ctx, out.ID)
	if err != nil {
		return model.Tracking{}, false, err
	}
	return t, out.Inserted, nil
}

func (r *TrackingGormRepository) FindByID(ctx context.Context, trackingID int64) (model.Tracking, error) {
	var t model.Tracking
	err := r.db.WithContext(ctx).First(&t, trackingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Tracking{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Tracking{}, err
	}
	return t, nil
}

func (r *TrackingGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.Tracking, error) {
	var t model.Tracking
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Tracking{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Tracking{}, err
	}
	return t, nil
}

func (r *TrackingGormRepository) UpdateFields(ctx context.Context, trackingID int64, fields map[string]any) (int64, error) {
	cols := pickFields(fields, trackingColumns...)
	if len(cols) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Tracking{}).
		Where("id = ?", trackingID).
		Updates(cols)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *TrackingGormRepository) SetStatusByOrderID(ctx context.Context, orderID int64, status model.TrackingStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Tracking{}).
		Where("order_id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *TrackingGormRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.Tracking{}).Error
}

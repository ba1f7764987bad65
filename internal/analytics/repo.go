package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
)

// Repository runs the aggregate queries behind the admin dashboards.
type Repository interface {
	CountDealsByStatus(ctx context.Context) (map[enums.DealStatus]int64, error)
	CountActiveUsersSince(ctx context.Context, since time.Time) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an analytics repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountDealsByStatus(ctx context.Context) (map[enums.DealStatus]int64, error) {
	type row struct {
		Status enums.DealStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[enums.DealStatus]int64, len(enums.DealStatusValues()))
	for _, status := range enums.DealStatusValues() {
		out[status] = 0
	}
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (r *repository) CountActiveUsersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("updated_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

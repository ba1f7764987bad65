package deals

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
)

// Repository defines persistence operations for deals and price history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, deal *models.Deal) (*models.Deal, error)
	CreatePriceChange(ctx context.Context, change *models.PriceChange) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	FindByIDWithHistory(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Deal, error)
	ListAll(ctx context.Context) ([]models.Deal, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to enums.DealStatus) (int64, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a deals repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

func (r *repository) CreatePriceChange(ctx context.Context, change *models.PriceChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	if err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *repository) FindByIDWithHistory(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).
		Preload("PriceHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&deal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Deal, error) {
	var out []models.Deal
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) ListAll(ctx context.Context) ([]models.Deal, error) {
	var out []models.Deal
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// UpdateStatusFrom flips status only when the row still holds the expected
// current status. The returned row count tells the caller whether it won the
// race.
func (r *repository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to enums.DealStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ?", id).
		Update("price", price).Error
}

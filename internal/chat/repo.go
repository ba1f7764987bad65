package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
)

// Repository defines persistence operations for chat messages.
type Repository interface {
	Create(ctx context.Context, message *models.Message) (*models.Message, error)
	ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Message, error)
	MarkRead(ctx context.Context, dealID, receiverID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, dealID, receiverID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a chat repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *repository) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// MarkRead flips every unread message addressed to the receiver in one
// statement, so repeated calls are no-ops.
func (r *repository) MarkRead(ctx context.Context, dealID, receiverID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("deal_id = ? AND receiver_id = ? AND is_read = ?", dealID, receiverID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) CountUnread(ctx context.Context, dealID, receiverID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("deal_id = ? AND receiver_id = ? AND is_read = ?", dealID, receiverID, false).
		Count(&count).Error
	return count, err
}

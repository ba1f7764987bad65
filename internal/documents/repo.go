package documents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
)

// Repository defines persistence operations for deal documents.
type Repository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Document, error)
	AppendGrantee(ctx context.Context, docID, granteeID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a documents repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Document, error) {
	var out []models.Document
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// AppendGrantee adds the grantee in a single statement with set semantics:
// the containment guard makes concurrent identical grants idempotent.
func (r *repository) AppendGrantee(ctx context.Context, docID, granteeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE documents
		 SET access_user_ids = array_append(access_user_ids, ?)
		 WHERE id = ? AND NOT access_user_ids @> ARRAY[?]::uuid[]`,
		granteeID, docID, granteeID,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

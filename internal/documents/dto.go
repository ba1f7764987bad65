package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
)

// GrantAccessRequest adds a user to a document's access list.
type GrantAccessRequest struct {
	DocumentID uuid.UUID `json:"documentId" validate:"required"`
	UserID     uuid.UUID `json:"userId" validate:"required"`
}

// DocumentDTO is the transport shape of a stored document.
type DocumentDTO struct {
	ID            uuid.UUID   `json:"id"`
	DealID        uuid.UUID   `json:"dealId"`
	UploadedBy    uuid.UUID   `json:"uploadedBy"`
	StorageURL    string      `json:"storageUrl"`
	AccessUserIDs []uuid.UUID `json:"accessUserIds"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func FromModel(d *models.Document) *DocumentDTO {
	if d == nil {
		return nil
	}
	return &DocumentDTO{
		ID:            d.ID,
		DealID:        d.DealID,
		UploadedBy:    d.UploadedBy,
		StorageURL:    d.StorageURL,
		AccessUserIDs: append([]uuid.UUID(nil), []uuid.UUID(d.AccessUserIDs)...),
		CreatedAt:     d.CreatedAt,
	}
}

func FromModels(ds []models.Document) []DocumentDTO {
	out := make([]DocumentDTO, 0, len(ds))
	for i := range ds {
		out = append(out, *FromModel(&ds[i]))
	}
	return out
}

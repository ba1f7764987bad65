package deals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
)

// CreateDealRequest is the payload for opening a new deal.
type CreateDealRequest struct {
	SellerID    uuid.UUID       `json:"sellerId" validate:"required"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
}

// UpdateStatusRequest drives the deal status machine.
type UpdateStatusRequest struct {
	DealID uuid.UUID `json:"dealId" validate:"required"`
	Status string    `json:"status" validate:"required"`
}

// UpdatePriceRequest replaces the negotiated price.
type UpdatePriceRequest struct {
	DealID   uuid.UUID       `json:"dealId" validate:"required"`
	NewPrice decimal.Decimal `json:"newPrice" validate:"required"`
}

// PriceChangeDTO is one price-history entry.
type PriceChangeDTO struct {
	Price     decimal.Decimal `json:"price"`
	UpdatedBy uuid.UUID       `json:"updatedBy"`
	Timestamp time.Time       `json:"timestamp"`
}

// DealDTO is the transport shape of a deal.
type DealDTO struct {
	ID           uuid.UUID        `json:"id"`
	BuyerID      uuid.UUID        `json:"buyerId"`
	SellerID     uuid.UUID        `json:"sellerId"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	Status       enums.DealStatus `json:"status"`
	PriceHistory []PriceChangeDTO `json:"priceHistory,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func FromModel(d *models.Deal) *DealDTO {
	if d == nil {
		return nil
	}
	dto := &DealDTO{
		ID:          d.ID,
		BuyerID:     d.BuyerID,
		SellerID:    d.SellerID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, pc := range d.PriceHistory {
		dto.PriceHistory = append(dto.PriceHistory, PriceChangeDTO{
			Price:     pc.Price,
			UpdatedBy: pc.UpdatedBy,
			Timestamp: pc.CreatedAt,
		})
	}
	return dto
}

func FromModels(ds []models.Deal) []DealDTO {
	out := make([]DealDTO, 0, len(ds))
	for i := range ds {
		out = append(out, *FromModel(&ds[i]))
	}
	return out
}

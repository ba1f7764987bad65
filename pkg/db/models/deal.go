package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk-backend/pkg/enums"
)

// Deal is the transaction negotiated between exactly one buyer and one seller.
// Status transitions are constrained by enums.DealStatus; every price change
// appends a PriceChange row.
type Deal struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BuyerID     uuid.UUID        `gorm:"type:uuid;not null" json:"buyerId"`
	SellerID    uuid.UUID        `gorm:"type:uuid;not null" json:"sellerId"`
	Title       string           `gorm:"type:text;not null" json:"title"`
	Description string           `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"price"`
	Status      enums.DealStatus `gorm:"type:deal_status;not null;default:'Pending'" json:"status"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	PriceHistory []PriceChange `gorm:"foreignKey:DealID" json:"priceHistory,omitempty"`
}

// IsParty reports whether the user is the deal's buyer or seller.
func (d *Deal) IsParty(userID uuid.UUID) bool {
	if d == nil {
		return false
	}
	return d.BuyerID == userID || d.SellerID == userID
}

// OtherParty returns the counterpart of the given party, or uuid.Nil when the
// user is not on the deal.
func (d *Deal) OtherParty(userID uuid.UUID) uuid.UUID {
	if d == nil {
		return uuid.Nil
	}
	switch userID {
	case d.BuyerID:
		return d.SellerID
	case d.SellerID:
		return d.BuyerID
	default:
		return uuid.Nil
	}
}

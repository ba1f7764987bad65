package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceChange is one append-only entry in a deal's price history. Rows are
// never updated or deleted.
type PriceChange struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DealID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"dealId"`
	Price     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	UpdatedBy uuid.UUID       `gorm:"type:uuid;not null" json:"updatedBy"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"timestamp"`
}

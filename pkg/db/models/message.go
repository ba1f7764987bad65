package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a chat message scoped to a deal. Body and sender are immutable
// after creation; IsRead only ever flips false to true.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DealID     uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_deal_created" json:"dealId"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null" json:"senderId"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null" json:"receiverId"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	IsRead     bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index:idx_messages_deal_created" json:"createdAt"`
}

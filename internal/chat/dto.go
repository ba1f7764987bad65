package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
)

// SendMessageRequest is the payload for posting a chat message.
type SendMessageRequest struct {
	DealID     uuid.UUID `json:"dealId" validate:"required"`
	ReceiverID uuid.UUID `json:"receiverId" validate:"required"`
	Message    string    `json:"message" validate:"required"`
}

// MarkReadRequest marks the caller's unread messages on a deal as read.
type MarkReadRequest struct {
	DealID uuid.UUID `json:"dealId" validate:"required"`
}

// MessageDTO is the transport shape of a chat message.
type MessageDTO struct {
	ID         uuid.UUID `json:"id"`
	DealID     uuid.UUID `json:"dealId"`
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Body       string    `json:"body"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

func FromModel(m *models.Message) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:         m.ID,
		DealID:     m.DealID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Body:       m.Body,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
}

func FromModels(ms []models.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(ms))
	for i := range ms {
		out = append(out, *FromModel(&ms[i]))
	}
	return out
}

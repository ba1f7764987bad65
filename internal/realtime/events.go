package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client-emitted events.
const (
	EventJoinRoom    = "joinRoom"
	EventLeaveRoom   = "leaveRoom"
	EventSendMessage = "sendMessage"
	EventTyping      = "typing"
	EventChatPrice   = "chatPrice"
)

// Server-emitted events.
const (
	EventNewMessage   = "newMessage"
	EventUserTyping   = "userTyping"
	EventPriceUpdated = "priceUpdated"
	EventMessagesRead = "messagesRead"
	EventError        = "error"
)

// Frame is the wire shape of every websocket message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame marshals the payload into a ready-to-send frame.
func NewFrame(event string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: event, Data: data}, nil
}

type roomPayload struct {
	DealID uuid.UUID `json:"dealId"`
}

type sendMessagePayload struct {
	DealID     uuid.UUID `json:"dealId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Content    string    `json:"content"`
}

type chatPricePayload struct {
	DealID   uuid.UUID       `json:"dealId"`
	NewPrice decimal.Decimal `json:"newPrice"`
}

// NewMessageEvent is the broadcast payload for a persisted chat message.
type NewMessageEvent struct {
	ID         uuid.UUID `json:"id"`
	DealID     uuid.UUID `json:"dealId"`
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Body       string    `json:"body"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserTypingEvent is ephemeral; receivers clear it after a quiet period.
type UserTypingEvent struct {
	UserID uuid.UUID `json:"userId"`
}

// PriceUpdatedEvent follows a persisted price change.
type PriceUpdatedEvent struct {
	DealID   uuid.UUID       `json:"dealId"`
	NewPrice decimal.Decimal `json:"newPrice"`
}

// MessagesReadEvent follows a persisted markRead.
type MessagesReadEvent struct {
	DealID uuid.UUID `json:"dealId"`
}

type errorEvent struct {
	Message string `json:"message"`
}

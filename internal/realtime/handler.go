package realtime

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/internal/chat"
	"github.com/dealdesk/dealdesk-backend/internal/deals"
	"github.com/dealdesk/dealdesk-backend/pkg/config"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
	"github.com/dealdesk/dealdesk-backend/pkg/logger"
)

// Handler upgrades authenticated requests onto the hub and dispatches
// client frames. Room joins are access-checked against the deals service
// before the hub learns about them.
type Handler struct {
	hub   *Hub
	deals deals.Service
	chat  chat.Service
	cfg   config.RealtimeConfig
	log   *logger.Logger
	up    websocket.Upgrader
}

// NewHandler wires the websocket entrypoint.
func NewHandler(hub *Hub, dealsSvc deals.Service, chatSvc chat.Service, cfg config.RealtimeConfig, allowedOrigins []string, log *logger.Logger) *Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &Handler{
		hub:   hub,
		deals: dealsSvc,
		chat:  chatSvc,
		cfg:   cfg,
		log:   log,
		up: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// ServeWS upgrades the request. The caller must have authenticated it and
// resolved the principal already.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request, principal access.Principal) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		if h.log != nil {
			h.log.Warn(r.Context(), "websocket upgrade failed: "+err.Error())
		}
		return
	}

	// The connection outlives the upgrade request.
	client := NewClient(context.WithoutCancel(r.Context()), conn, principal, h.cfg, h.log)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.hub, h.dispatch)
}

func (h *Handler) dispatch(c *Client, f Frame) {
	switch f.Event {
	case EventJoinRoom:
		h.handleJoin(c, f.Data)
	case EventLeaveRoom:
		h.handleLeave(c, f.Data)
	case EventSendMessage:
		h.handleSendMessage(c, f.Data)
	case EventTyping:
		h.handleTyping(c, f.Data)
	case EventChatPrice:
		h.handleChatPrice(c, f.Data)
	default:
		c.SendFrame(EventError, errorEvent{Message: "unknown event: " + f.Event})
	}
}

func (h *Handler) handleJoin(c *Client, data json.RawMessage) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.DealID == uuid.Nil {
		c.SendFrame(EventError, errorEvent{Message: "joinRoom requires dealId"})
		return
	}
	if _, err := h.deals.Get(c.Context(), c.Principal(), p.DealID); err != nil {
		c.SendFrame(EventError, errorEvent{Message: clientMessage(err)})
		return
	}
	h.hub.Join(c, p.DealID)
}

func (h *Handler) handleLeave(c *Client, data json.RawMessage) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.DealID == uuid.Nil {
		c.SendFrame(EventError, errorEvent{Message: "leaveRoom requires dealId"})
		return
	}
	h.hub.Leave(c, p.DealID)
}

func (h *Handler) handleSendMessage(c *Client, data json.RawMessage) {
	var p sendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.SendFrame(EventError, errorEvent{Message: "malformed sendMessage payload"})
		return
	}

	msg, err := h.chat.Send(c.Context(), c.Principal(), chat.SendMessageRequest{
		DealID:     p.DealID,
		ReceiverID: p.ReceiverID,
		Message:    p.Content,
	})
	if err != nil {
		c.SendFrame(EventError, errorEvent{Message: clientMessage(err)})
		return
	}

	h.hub.Broadcast(p.DealID, EventNewMessage, NewMessageEvent{
		ID:         msg.ID,
		DealID:     msg.DealID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Body:       msg.Body,
		IsRead:     msg.IsRead,
		CreatedAt:  msg.CreatedAt,
	}, nil)
}

func (h *Handler) handleTyping(c *Client, data json.RawMessage) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.DealID == uuid.Nil {
		return
	}
	// Unpersisted; room membership is the access check here since a join
	// already passed through the deals service.
	if !h.hub.InRoom(c, p.DealID) {
		return
	}
	h.hub.Broadcast(p.DealID, EventUserTyping, UserTypingEvent{UserID: c.Principal().ID}, c)
}

func (h *Handler) handleChatPrice(c *Client, data json.RawMessage) {
	var p chatPricePayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.SendFrame(EventError, errorEvent{Message: "malformed chatPrice payload"})
		return
	}

	deal, err := h.deals.UpdatePrice(c.Context(), c.Principal(), p.DealID, p.NewPrice)
	if err != nil {
		c.SendFrame(EventError, errorEvent{Message: clientMessage(err)})
		return
	}

	h.hub.Broadcast(p.DealID, EventPriceUpdated, PriceUpdatedEvent{
		DealID:   deal.ID,
		NewPrice: deal.Price,
	}, nil)
}

// clientMessage keeps internal detail off the wire.
func clientMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return "internal error"
}

package controllers

import (
	"net/http"

	"github.com/dealdesk/dealdesk-backend/api/responses"
	"github.com/dealdesk/dealdesk-backend/api/validators"
	"github.com/dealdesk/dealdesk-backend/internal/chat"
	"github.com/dealdesk/dealdesk-backend/internal/realtime"
	"github.com/dealdesk/dealdesk-backend/pkg/logger"
)

// MessageSend persists a chat message and then fans it out to the deal's
// room. Broadcast failure is invisible to the caller.
func MessageSend(svc chat.Service, hub realtime.Broadcaster, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req chat.SendMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		msg, err := svc.Send(r.Context(), principal, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if hub != nil {
			hub.Broadcast(msg.DealID, realtime.EventNewMessage, realtime.NewMessageEvent{
				ID:         msg.ID,
				DealID:     msg.DealID,
				SenderID:   msg.SenderID,
				ReceiverID: msg.ReceiverID,
				Body:       msg.Body,
				IsRead:     msg.IsRead,
				CreatedAt:  msg.CreatedAt,
			}, nil)
		}

		responses.WriteSuccess(w, http.StatusCreated, "message sent", map[string]any{"chatMessage": msg})
	}
}

// MessageList returns the full thread for a deal, oldest first.
func MessageList(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		msgs, err := svc.List(r.Context(), principal, dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, "messages retrieved", map[string]any{"chatMessages": msgs})
	}
}

// MessageUnreadCount returns how many messages addressed to the caller on
// this deal are still unread.
func MessageUnreadCount(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.CountUnread(r.Context(), principal, dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, "unread count retrieved", map[string]any{"unreadCount": count})
	}
}

// MessageMarkRead marks the caller's unread messages on a deal as read and
// notifies the room.
func MessageMarkRead(svc chat.Service, hub realtime.Broadcaster, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req chat.MarkReadRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.MarkRead(r.Context(), principal, req.DealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if hub != nil {
			hub.Broadcast(req.DealID, realtime.EventMessagesRead, realtime.MessagesReadEvent{DealID: req.DealID}, nil)
		}

		responses.WriteSuccess(w, http.StatusOK, "messages marked read", map[string]any{"updatedCount": updated})
	}
}

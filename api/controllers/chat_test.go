package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/internal/chat"
	"github.com/dealdesk/dealdesk-backend/internal/realtime"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
)

type stubChatService struct {
	sendFn     func(principal access.Principal, req chat.SendMessageRequest) (*chat.MessageDTO, error)
	listFn     func(principal access.Principal, dealID uuid.UUID) ([]chat.MessageDTO, error)
	markReadFn func(principal access.Principal, dealID uuid.UUID) (int64, error)
	unreadFn   func(principal access.Principal, dealID uuid.UUID) (int64, error)
}

func (s stubChatService) Send(_ context.Context, principal access.Principal, req chat.SendMessageRequest) (*chat.MessageDTO, error) {
	return s.sendFn(principal, req)
}

func (s stubChatService) List(_ context.Context, principal access.Principal, dealID uuid.UUID) ([]chat.MessageDTO, error) {
	return s.listFn(principal, dealID)
}

func (s stubChatService) MarkRead(_ context.Context, principal access.Principal, dealID uuid.UUID) (int64, error) {
	return s.markReadFn(principal, dealID)
}

func (s stubChatService) CountUnread(_ context.Context, principal access.Principal, dealID uuid.UUID) (int64, error) {
	return s.unreadFn(principal, dealID)
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
	deals  []uuid.UUID
}

func (b *recordingBroadcaster) Broadcast(dealID uuid.UUID, event string, _ any, _ *realtime.Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	b.deals = append(b.deals, dealID)
}

func TestMessageSendBroadcastsAfterPersist(t *testing.T) {
	sender := access.Principal{ID: uuid.New(), Role: enums.UserRoleBuyer}
	dealID := uuid.New()
	receiverID := uuid.New()
	msg := &chat.MessageDTO{ID: uuid.New(), DealID: dealID, SenderID: sender.ID, ReceiverID: receiverID, Body: "can you do 1100?"}

	hub := &recordingBroadcaster{}
	handler := MessageSend(stubChatService{
		sendFn: func(principal access.Principal, req chat.SendMessageRequest) (*chat.MessageDTO, error) {
			if req.DealID != dealID || req.ReceiverID != receiverID {
				t.Fatalf("unexpected request: %+v", req)
			}
			return msg, nil
		},
	}, hub, nil)

	body, _ := json.Marshal(map[string]any{"dealId": dealID, "receiverId": receiverID, "message": "can you do 1100?"})
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader(body))
	req = authed(req, sender)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(hub.events) != 1 || hub.events[0] != realtime.EventNewMessage {
		t.Fatalf("broadcasts = %v, want one newMessage", hub.events)
	}
	if hub.deals[0] != dealID {
		t.Fatalf("broadcast deal = %s, want %s", hub.deals[0], dealID)
	}
}

func TestMessageSendSkipsBroadcastOnFailure(t *testing.T) {
	hub := &recordingBroadcaster{}
	handler := MessageSend(stubChatService{
		sendFn: func(access.Principal, chat.SendMessageRequest) (*chat.MessageDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a party to this deal")
		},
	}, hub, nil)

	body, _ := json.Marshal(map[string]any{"dealId": uuid.New(), "receiverId": uuid.New(), "message": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader(body))
	req = authed(req, access.Principal{ID: uuid.New(), Role: enums.UserRoleBuyer})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(hub.events) != 0 {
		t.Fatal("no broadcast should happen when persistence fails")
	}
}

func TestMessageListUsesRouteParam(t *testing.T) {
	caller := access.Principal{ID: uuid.New(), Role: enums.UserRoleSeller}
	dealID := uuid.New()

	handler := MessageList(stubChatService{
		listFn: func(principal access.Principal, gotDealID uuid.UUID) ([]chat.MessageDTO, error) {
			if gotDealID != dealID {
				t.Fatalf("dealId = %s, want %s", gotDealID, dealID)
			}
			return []chat.MessageDTO{{ID: uuid.New(), DealID: dealID}}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/chat/"+dealID.String(), nil)
	req = authed(req, caller)
	req = withRouteParam(req, "dealId", dealID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestMessageListRejectsMalformedDealID(t *testing.T) {
	handler := MessageList(stubChatService{
		listFn: func(access.Principal, uuid.UUID) ([]chat.MessageDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/chat/not-a-uuid", nil)
	req = authed(req, access.Principal{ID: uuid.New(), Role: enums.UserRoleBuyer})
	req = withRouteParam(req, "dealId", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMessageUnreadCount(t *testing.T) {
	dealID := uuid.New()
	handler := MessageUnreadCount(stubChatService{
		unreadFn: func(_ access.Principal, gotDealID uuid.UUID) (int64, error) {
			return 3, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/chat/"+dealID.String()+"/unread-count", nil)
	req = authed(req, access.Principal{ID: uuid.New(), Role: enums.UserRoleBuyer})
	req = withRouteParam(req, "dealId", dealID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		UnreadCount int64 `json:"unreadCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.UnreadCount != 3 {
		t.Fatalf("unreadCount = %d, want 3", envelope.UnreadCount)
	}
}

func TestMessageMarkReadBroadcasts(t *testing.T) {
	dealID := uuid.New()
	hub := &recordingBroadcaster{}
	handler := MessageMarkRead(stubChatService{
		markReadFn: func(_ access.Principal, gotDealID uuid.UUID) (int64, error) {
			if gotDealID != dealID {
				t.Fatalf("dealId = %s, want %s", gotDealID, dealID)
			}
			return 2, nil
		},
	}, hub, nil)

	body, _ := json.Marshal(map[string]any{"dealId": dealID})
	req := httptest.NewRequest(http.MethodPut, "/chat/read", bytes.NewReader(body))
	req = authed(req, access.Principal{ID: uuid.New(), Role: enums.UserRoleSeller})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(hub.events) != 1 || hub.events[0] != realtime.EventMessagesRead {
		t.Fatalf("broadcasts = %v, want one messagesRead", hub.events)
	}
}

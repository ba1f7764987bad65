package chat

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
)

type fakeChatRepo struct {
	messages []models.Message
	readArgs []string
	reads    int64
	unread   int64
}

func (f *fakeChatRepo) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	message.ID = uuid.New()
	f.messages = append(f.messages, *message)
	return message, nil
}

func (f *fakeChatRepo) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.messages {
		if m.DealID == dealID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) MarkRead(ctx context.Context, dealID, receiverID uuid.UUID) (int64, error) {
	f.readArgs = append(f.readArgs, dealID.String()+":"+receiverID.String())
	return f.reads, nil
}

func (f *fakeChatRepo) CountUnread(ctx context.Context, dealID, receiverID uuid.UUID) (int64, error) {
	return f.unread, nil
}

type fakeDealAccessor struct {
	deal *models.Deal
}

func (f *fakeDealAccessor) Get(ctx context.Context, principal access.Principal, dealID uuid.UUID) (*models.Deal, error) {
	if f.deal == nil || f.deal.ID != dealID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
	}
	if !access.CanAccessDeal(principal, f.deal) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a party to this deal")
	}
	return f.deal, nil
}

func chatTestFixture(t *testing.T) (Service, *fakeChatRepo, *models.Deal) {
	t.Helper()
	deal := &models.Deal{ID: uuid.New(), BuyerID: uuid.New(), SellerID: uuid.New()}
	repo := &fakeChatRepo{}
	svc, err := NewService(ServiceParams{Repo: repo, Deals: &fakeDealAccessor{deal: deal}})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc, repo, deal
}

func TestSendPersistsUnreadMessage(t *testing.T) {
	svc, repo, deal := chatTestFixture(t)
	principal := access.Principal{ID: deal.BuyerID, Role: enums.UserRoleBuyer}

	dto, err := svc.Send(context.Background(), principal, SendMessageRequest{
		DealID:     deal.ID,
		ReceiverID: deal.SellerID,
		Message:    "hello",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if dto.ID == uuid.Nil {
		t.Fatalf("created message must carry its id for correlation")
	}
	if dto.SenderID != deal.BuyerID || dto.ReceiverID != deal.SellerID {
		t.Fatalf("message parties wrong: %+v", dto)
	}
	if dto.IsRead {
		t.Fatalf("new message must start unread")
	}
	if len(repo.messages) != 1 {
		t.Fatalf("message not persisted")
	}
}

func TestSendRejectsEmptyBody(t *testing.T) {
	svc, _, deal := chatTestFixture(t)
	principal := access.Principal{ID: deal.BuyerID, Role: enums.UserRoleBuyer}

	for _, body := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Send(context.Background(), principal, SendMessageRequest{
			DealID:     deal.ID,
			ReceiverID: deal.SellerID,
			Message:    body,
		}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for body %q, got %v", body, err)
		}
	}
}

func TestSendRejectsWrongReceiver(t *testing.T) {
	svc, _, deal := chatTestFixture(t)
	principal := access.Principal{ID: deal.BuyerID, Role: enums.UserRoleBuyer}

	// Receiver must be the counterpart, not the sender or an outsider.
	for _, receiver := range []uuid.UUID{deal.BuyerID, uuid.New()} {
		if _, err := svc.Send(context.Background(), principal, SendMessageRequest{
			DealID:     deal.ID,
			ReceiverID: receiver,
			Message:    "hi",
		}); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
			t.Fatalf("expected forbidden for receiver %s, got %v", receiver, err)
		}
	}
}

func TestSendRejectsNonParty(t *testing.T) {
	svc, _, deal := chatTestFixture(t)
	stranger := access.Principal{ID: uuid.New(), Role: enums.UserRoleBuyer}

	if _, err := svc.Send(context.Background(), stranger, SendMessageRequest{
		DealID:     deal.ID,
		ReceiverID: deal.SellerID,
		Message:    "hi",
	}); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for non-party, got %v", err)
	}
}

func TestListRequiresDealAccess(t *testing.T) {
	svc, repo, deal := chatTestFixture(t)
	repo.messages = []models.Message{
		{ID: uuid.New(), DealID: deal.ID, SenderID: deal.BuyerID, ReceiverID: deal.SellerID, Body: "one"},
		{ID: uuid.New(), DealID: deal.ID, SenderID: deal.SellerID, ReceiverID: deal.BuyerID, Body: "two"},
	}

	got, err := svc.List(context.Background(), access.Principal{ID: deal.SellerID, Role: enums.UserRoleSeller}, deal.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}

	if _, err := svc.List(context.Background(), access.Principal{ID: uuid.New(), Role: enums.UserRoleSeller}, deal.ID); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
}

func TestMarkReadScopesToCaller(t *testing.T) {
	svc, repo, deal := chatTestFixture(t)
	repo.reads = 3
	principal := access.Principal{ID: deal.SellerID, Role: enums.UserRoleSeller}

	rows, err := svc.MarkRead(context.Background(), principal, deal.ID)
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if rows != 3 {
		t.Fatalf("expected 3 rows, got %d", rows)
	}
	want := deal.ID.String() + ":" + deal.SellerID.String()
	if len(repo.readArgs) != 1 || repo.readArgs[0] != want {
		t.Fatalf("mark read must target the caller as receiver, got %v", repo.readArgs)
	}
}

func TestCountUnreadRequiresAccess(t *testing.T) {
	svc, repo, deal := chatTestFixture(t)
	repo.unread = 5

	count, err := svc.CountUnread(context.Background(), access.Principal{ID: deal.BuyerID, Role: enums.UserRoleBuyer}, deal.ID)
	if err != nil {
		t.Fatalf("count unread failed: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5, got %d", count)
	}

	if _, err := svc.CountUnread(context.Background(), access.Principal{ID: uuid.New(), Role: enums.UserRoleBuyer}, deal.ID); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
}

func TestSendRejectsAdminSender(t *testing.T) {
	svc, repo, deal := chatTestFixture(t)
	admin := access.Principal{ID: uuid.New(), Role: enums.UserRoleAdmin}

	_, err := svc.Send(context.Background(), admin, SendMessageRequest{
		DealID:     deal.ID,
		ReceiverID: uuid.Nil,
		Message:    "hello",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for admin sender, got %v", err)
	}
	if len(repo.messages) != 0 {
		t.Fatalf("no message should be persisted, got %d", len(repo.messages))
	}
}

func TestSendRejectsNilReceiver(t *testing.T) {
	svc, repo, deal := chatTestFixture(t)
	principal := access.Principal{ID: deal.BuyerID, Role: enums.UserRoleBuyer}

	_, err := svc.Send(context.Background(), principal, SendMessageRequest{
		DealID:  deal.ID,
		Message: "hello",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for missing receiver, got %v", err)
	}
	if len(repo.messages) != 0 {
		t.Fatalf("no message should be persisted, got %d", len(repo.messages))
	}
}

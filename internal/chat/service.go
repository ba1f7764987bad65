package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
)

// Service defines the chat operations consumed by controllers and the
// realtime handler.
type Service interface {
	Send(ctx context.Context, principal access.Principal, req SendMessageRequest) (*MessageDTO, error)
	List(ctx context.Context, principal access.Principal, dealID uuid.UUID) ([]MessageDTO, error)
	MarkRead(ctx context.Context, principal access.Principal, dealID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, principal access.Principal, dealID uuid.UUID) (int64, error)
}

// dealAccessor resolves a deal and enforces CanAccessDeal; satisfied by the
// deals service.
type dealAccessor interface {
	Get(ctx context.Context, principal access.Principal, dealID uuid.UUID) (*models.Deal, error)
}

type service struct {
	repo  Repository
	deals dealAccessor
}

// ServiceParams bundles the dependencies required to build a chat service.
type ServiceParams struct {
	Repo  Repository
	Deals dealAccessor
}

// NewService constructs a chat service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("chat repository is required")
	}
	if params.Deals == nil {
		return nil, fmt.Errorf("deal accessor is required")
	}
	return &service{repo: params.Repo, deals: params.Deals}, nil
}

func (s *service) Send(ctx context.Context, principal access.Principal, req SendMessageRequest) (*MessageDTO, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body must not be empty")
	}

	deal, err := s.deals.Get(ctx, principal, req.DealID)
	if err != nil {
		return nil, err
	}
	if !deal.IsParty(principal.ID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the deal's parties may send messages")
	}
	if req.ReceiverID == uuid.Nil || deal.OtherParty(principal.ID) != req.ReceiverID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "receiver must be the other party on the deal")
	}

	message := &models.Message{
		DealID:     req.DealID,
		SenderID:   principal.ID,
		ReceiverID: req.ReceiverID,
		Body:       req.Message,
		IsRead:     false,
	}
	if _, err := s.repo.Create(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create message")
	}

	return FromModel(message), nil
}

func (s *service) List(ctx context.Context, principal access.Principal, dealID uuid.UUID) ([]MessageDTO, error) {
	if _, err := s.deals.Get(ctx, principal, dealID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list messages")
	}
	return FromModels(rows), nil
}

func (s *service) MarkRead(ctx context.Context, principal access.Principal, dealID uuid.UUID) (int64, error) {
	if _, err := s.deals.Get(ctx, principal, dealID); err != nil {
		return 0, err
	}
	rows, err := s.repo.MarkRead(ctx, dealID, principal.ID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark messages read")
	}
	return rows, nil
}

func (s *service) CountUnread(ctx context.Context, principal access.Principal, dealID uuid.UUID) (int64, error) {
	if _, err := s.deals.Get(ctx, principal, dealID); err != nil {
		return 0, err
	}
	count, err := s.repo.CountUnread(ctx, dealID, principal.ID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count unread messages")
	}
	return count, nil
}

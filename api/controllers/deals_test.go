package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/internal/deals"
	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
)

type stubDealService struct {
	createFn     func(principal access.Principal, req deals.CreateDealRequest) (*deals.DealDTO, error)
	listFn       func(principal access.Principal) ([]deals.DealDTO, error)
	transitionFn func(principal access.Principal, dealID uuid.UUID, target enums.DealStatus) (*deals.DealDTO, error)
}

func (s stubDealService) Create(_ context.Context, principal access.Principal, req deals.CreateDealRequest) (*deals.DealDTO, error) {
	return s.createFn(principal, req)
}

func (s stubDealService) List(_ context.Context, principal access.Principal) ([]deals.DealDTO, error) {
	return s.listFn(principal)
}

func (s stubDealService) Get(_ context.Context, _ access.Principal, _ uuid.UUID) (*models.Deal, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
}

func (s stubDealService) TransitionStatus(_ context.Context, principal access.Principal, dealID uuid.UUID, target enums.DealStatus) (*deals.DealDTO, error) {
	return s.transitionFn(principal, dealID, target)
}

func (s stubDealService) UpdatePrice(_ context.Context, _ access.Principal, _ uuid.UUID, _ decimal.Decimal) (*deals.DealDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not wired")
}

func TestDealCreateSuccess(t *testing.T) {
	buyer := access.Principal{ID: uuid.New(), Role: enums.UserRoleBuyer}
	sellerID := uuid.New()
	dto := &deals.DealDTO{ID: uuid.New(), BuyerID: buyer.ID, SellerID: sellerID, Title: "bulk widgets", Status: enums.DealStatusPending}

	handler := DealCreate(stubDealService{
		createFn: func(principal access.Principal, req deals.CreateDealRequest) (*deals.DealDTO, error) {
			if principal.ID != buyer.ID {
				t.Fatalf("principal = %s, want %s", principal.ID, buyer.ID)
			}
			if req.SellerID != sellerID {
				t.Fatalf("sellerId = %s, want %s", req.SellerID, sellerID)
			}
			return dto, nil
		},
	}, nil)

	body, _ := json.Marshal(map[string]any{
		"sellerId":    sellerID,
		"title":       "bulk widgets",
		"description": "500 units",
		"price":       "1200.50",
	})
	req := httptest.NewRequest(http.MethodPost, "/deals", bytes.NewReader(body))
	req = authed(req, buyer)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Deal    *deals.DealDTO `json:"deal"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !envelope.Success || envelope.Deal == nil || envelope.Deal.ID != dto.ID {
		t.Fatalf("unexpected envelope: %s", rec.Body.String())
	}
}

func TestDealCreateValidationFailure(t *testing.T) {
	handler := DealCreate(stubDealService{
		createFn: func(access.Principal, deals.CreateDealRequest) (*deals.DealDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/deals", bytes.NewReader([]byte(`{"title":""}`)))
	req = authed(req, access.Principal{ID: uuid.New(), Role: enums.UserRoleBuyer})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDealCreateRequiresAuth(t *testing.T) {
	handler := DealCreate(stubDealService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/deals", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestDealUpdateStatusParsesTarget(t *testing.T) {
	seller := access.Principal{ID: uuid.New(), Role: enums.UserRoleSeller}
	dealID := uuid.New()

	handler := DealUpdateStatus(stubDealService{
		transitionFn: func(principal access.Principal, gotDealID uuid.UUID, target enums.DealStatus) (*deals.DealDTO, error) {
			if gotDealID != dealID {
				t.Fatalf("dealId = %s, want %s", gotDealID, dealID)
			}
			if target != enums.DealStatusInProgress {
				t.Fatalf("target = %s", target)
			}
			return &deals.DealDTO{ID: dealID, Status: target}, nil
		},
	}, nil)

	body, _ := json.Marshal(map[string]any{"dealId": dealID, "status": "In Progress"})
	req := httptest.NewRequest(http.MethodPut, "/deals/status", bytes.NewReader(body))
	req = authed(req, seller)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestDealUpdateStatusRejectsUnknownStatus(t *testing.T) {
	handler := DealUpdateStatus(stubDealService{
		transitionFn: func(access.Principal, uuid.UUID, enums.DealStatus) (*deals.DealDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	body, _ := json.Marshal(map[string]any{"dealId": uuid.New(), "status": "Archived"})
	req := httptest.NewRequest(http.MethodPut, "/deals/status", bytes.NewReader(body))
	req = authed(req, access.Principal{ID: uuid.New(), Role: enums.UserRoleSeller})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDealUpdateStatusSurfacesStateConflict(t *testing.T) {
	handler := DealUpdateStatus(stubDealService{
		transitionFn: func(access.Principal, uuid.UUID, enums.DealStatus) (*deals.DealDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot transition from Completed")
		},
	}, nil)

	body, _ := json.Marshal(map[string]any{"dealId": uuid.New(), "status": "Pending"})
	req := httptest.NewRequest(http.MethodPut, "/deals/status", bytes.NewReader(body))
	req = authed(req, access.Principal{ID: uuid.New(), Role: enums.UserRoleSeller})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestDealListReturnsDeals(t *testing.T) {
	caller := access.Principal{ID: uuid.New(), Role: enums.UserRoleSeller}
	handler := DealList(stubDealService{
		listFn: func(principal access.Principal) ([]deals.DealDTO, error) {
			return []deals.DealDTO{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/deals", nil)
	req = authed(req, caller)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Deals []deals.DealDTO `json:"deals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(envelope.Deals) != 2 {
		t.Fatalf("deals = %d, want 2", len(envelope.Deals))
	}
}

package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/internal/analytics"
	"github.com/dealdesk/dealdesk-backend/internal/auth"
	"github.com/dealdesk/dealdesk-backend/internal/chat"
	"github.com/dealdesk/dealdesk-backend/internal/deals"
	"github.com/dealdesk/dealdesk-backend/internal/documents"
	"github.com/dealdesk/dealdesk-backend/internal/users"
	pkgauth "github.com/dealdesk/dealdesk-backend/pkg/auth"
	"github.com/dealdesk/dealdesk-backend/pkg/config"
	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
)

type allowAllSessions struct{}

func (allowAllSessions) Active(context.Context, string, string) (bool, error) { return true, nil }

type routerAuthService struct{}

func (routerAuthService) Register(_ context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: uuid.New(), Email: req.Email}, nil
}

func (routerAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{Token: "t", User: &users.UserDTO{ID: uuid.New()}}, nil
}

func (routerAuthService) Logout(context.Context, uuid.UUID, string) error { return nil }

type routerDealService struct{}

func (routerDealService) Create(_ context.Context, _ access.Principal, req deals.CreateDealRequest) (*deals.DealDTO, error) {
	return &deals.DealDTO{ID: uuid.New(), SellerID: req.SellerID, Status: enums.DealStatusPending}, nil
}

func (routerDealService) List(context.Context, access.Principal) ([]deals.DealDTO, error) {
	return []deals.DealDTO{}, nil
}

func (routerDealService) Get(context.Context, access.Principal, uuid.UUID) (*models.Deal, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
}

func (routerDealService) TransitionStatus(context.Context, access.Principal, uuid.UUID, enums.DealStatus) (*deals.DealDTO, error) {
	return &deals.DealDTO{}, nil
}

func (routerDealService) UpdatePrice(context.Context, access.Principal, uuid.UUID, decimal.Decimal) (*deals.DealDTO, error) {
	return &deals.DealDTO{}, nil
}

type routerChatService struct{}

func (routerChatService) Send(context.Context, access.Principal, chat.SendMessageRequest) (*chat.MessageDTO, error) {
	return &chat.MessageDTO{ID: uuid.New()}, nil
}

func (routerChatService) List(context.Context, access.Principal, uuid.UUID) ([]chat.MessageDTO, error) {
	return []chat.MessageDTO{}, nil
}

func (routerChatService) MarkRead(context.Context, access.Principal, uuid.UUID) (int64, error) {
	return 0, nil
}

func (routerChatService) CountUnread(context.Context, access.Principal, uuid.UUID) (int64, error) {
	return 0, nil
}

type routerDocumentService struct{}

func (routerDocumentService) Upload(context.Context, access.Principal, documents.UploadInput) (*documents.DocumentDTO, error) {
	return &documents.DocumentDTO{ID: uuid.New()}, nil
}

func (routerDocumentService) List(context.Context, access.Principal, uuid.UUID) ([]documents.DocumentDTO, error) {
	return []documents.DocumentDTO{}, nil
}

func (routerDocumentService) GrantAccess(context.Context, access.Principal, documents.GrantAccessRequest) (*documents.DocumentDTO, error) {
	return &documents.DocumentDTO{ID: uuid.New()}, nil
}

type routerAnalyticsService struct{}

func (routerAnalyticsService) DealCounts(context.Context, access.Principal) (*analytics.DealCounts, error) {
	return &analytics.DealCounts{}, nil
}

func (routerAnalyticsService) Engagement(context.Context, access.Principal) (*analytics.Engagement, error) {
	return &analytics.Engagement{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "dealdesk-test",
			ExpirationMinutes: 15,
		},
		Storage: config.StorageConfig{BucketName: "test-bucket", MaxUploadMB: 10},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Config:           testConfig(),
		Sessions:         allowAllSessions{},
		AuthService:      routerAuthService{},
		DealService:      routerDealService{},
		ChatService:      routerChatService{},
		DocumentService:  routerDocumentService{},
		AnalyticsService: routerAnalyticsService{},
	})
}

func tokenFor(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthzIsPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterIsPublic(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{
		"name":     "Ana",
		"email":    "ana@example.com",
		"password": "hunter2hunter2",
		"role":     "buyer",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/deals"},
		{http.MethodPost, "/deals"},
		{http.MethodPut, "/deals/status"},
		{http.MethodPost, "/chat/messages"},
		{http.MethodGet, "/chat/" + uuid.NewString()},
		{http.MethodGet, "/chat/" + uuid.NewString() + "/unread-count"},
		{http.MethodPut, "/chat/read"},
		{http.MethodPost, "/documents/upload"},
		{http.MethodGet, "/documents/" + uuid.NewString()},
		{http.MethodPut, "/documents/grant-access"},
		{http.MethodGet, "/analytics/deals"},
		{http.MethodGet, "/analytics/engagement"},
		{http.MethodPost, "/auth/logout"},
	}

	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestDealListWithToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/deals", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, enums.UserRoleBuyer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyticsRequiresAdminRole(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/analytics/deals", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, enums.UserRoleBuyer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/analytics/deals", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, enums.UserRoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestChatRouteParamsReachHandler(t *testing.T) {
	router := newTestRouter(t)
	dealID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/chat/"+dealID.String()+"/unread-count", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, enums.UserRoleSeller))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		UnreadCount *int64 `json:"unreadCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.UnreadCount == nil {
		t.Fatalf("unreadCount missing: %s", rec.Body.String())
	}
}

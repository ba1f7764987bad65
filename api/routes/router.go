package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealdesk/dealdesk-backend/api/controllers"
	"github.com/dealdesk/dealdesk-backend/api/middleware"
	"github.com/dealdesk/dealdesk-backend/internal/analytics"
	"github.com/dealdesk/dealdesk-backend/internal/auth"
	"github.com/dealdesk/dealdesk-backend/internal/chat"
	"github.com/dealdesk/dealdesk-backend/internal/deals"
	"github.com/dealdesk/dealdesk-backend/internal/documents"
	"github.com/dealdesk/dealdesk-backend/internal/realtime"
	"github.com/dealdesk/dealdesk-backend/pkg/auth/session"
	"github.com/dealdesk/dealdesk-backend/pkg/config"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
	"github.com/dealdesk/dealdesk-backend/pkg/logger"
	"github.com/dealdesk/dealdesk-backend/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Sessions    session.Checker
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	DBPinger    controllers.Pinger
	CachePinger controllers.Pinger

	AuthService      auth.Service
	DealService      deals.Service
	ChatService      chat.Service
	DocumentService  documents.Service
	AnalyticsService analytics.Service

	Hub      realtime.Broadcaster
	Realtime *realtime.Handler
}

// NewRouter assembles the full route table behind the shared middleware
// chain.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	r.Get("/healthz", controllers.Healthz(cfg, deps.DBPinger, deps.CachePinger))

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(deps.AuthService, logg))
		r.Post("/login", controllers.Login(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Post("/logout", controllers.Logout(deps.AuthService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/deals", func(r chi.Router) {
			r.Post("/", controllers.DealCreate(deps.DealService, logg))
			r.Get("/", controllers.DealList(deps.DealService, logg))
			r.Put("/status", controllers.DealUpdateStatus(deps.DealService, logg))
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/messages", controllers.MessageSend(deps.ChatService, deps.Hub, logg))
			r.Put("/read", controllers.MessageMarkRead(deps.ChatService, deps.Hub, logg))
			r.Get("/{dealId}", controllers.MessageList(deps.ChatService, logg))
			r.Get("/{dealId}/unread-count", controllers.MessageUnreadCount(deps.ChatService, logg))
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", controllers.DocumentUpload(deps.DocumentService, cfg.Storage.MaxUploadMB, logg))
			r.Put("/grant-access", controllers.DocumentGrantAccess(deps.DocumentService, logg))
			r.Get("/{dealId}", controllers.DocumentList(deps.DocumentService, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
			r.Get("/deals", controllers.AnalyticsDeals(deps.AnalyticsService, logg))
			r.Get("/engagement", controllers.AnalyticsEngagement(deps.AnalyticsService, logg))
		})

		if deps.Realtime != nil {
			r.Get("/ws", controllers.Websocket(deps.Realtime, logg))
		}
	})

	return r
}

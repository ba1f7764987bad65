package controllers

import (
	"net/http"

	"github.com/dealdesk/dealdesk-backend/api/responses"
	"github.com/dealdesk/dealdesk-backend/internal/analytics"
	"github.com/dealdesk/dealdesk-backend/pkg/logger"
)

// AnalyticsDeals returns per-status deal counts. Admin only.
func AnalyticsDeals(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		counts, err := svc.DealCounts(r.Context(), principal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, "deal analytics retrieved", map[string]any{"analytics": counts})
	}
}

// AnalyticsEngagement returns recent-activity counts. Admin only.
func AnalyticsEngagement(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		engagement, err := svc.Engagement(r.Context(), principal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, "engagement analytics retrieved", map[string]any{"analytics": engagement})
	}
}

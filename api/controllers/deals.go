package controllers

import (
	"net/http"

	"github.com/dealdesk/dealdesk-backend/api/responses"
	"github.com/dealdesk/dealdesk-backend/api/validators"
	"github.com/dealdesk/dealdesk-backend/internal/deals"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
	"github.com/dealdesk/dealdesk-backend/pkg/logger"
)

// DealCreate opens a deal against a seller. Buyer only.
func DealCreate(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req deals.CreateDealRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Create(r.Context(), principal, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusCreated, "deal created", map[string]any{"deal": deal})
	}
}

// DealList returns the caller's deals; admins see every deal.
func DealList(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), principal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, "deals retrieved", map[string]any{"deals": list})
	}
}

// DealUpdateStatus advances the deal lifecycle. Seller only.
func DealUpdateStatus(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req deals.UpdateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseDealStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown deal status"))
			return
		}

		deal, err := svc.TransitionStatus(r.Context(), principal, req.DealID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, "deal status updated", map[string]any{"deal": deal})
	}
}

package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dealdesk/dealdesk-backend/api/middleware"
	"github.com/dealdesk/dealdesk-backend/internal/access"
)

func withRouteParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx)
	return r.WithContext(ctx)
}

func authed(r *http.Request, principal access.Principal) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), principal, "test-jti"))
}

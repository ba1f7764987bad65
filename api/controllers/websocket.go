package controllers

import (
	"net/http"

	"github.com/dealdesk/dealdesk-backend/api/responses"
	"github.com/dealdesk/dealdesk-backend/internal/realtime"
	"github.com/dealdesk/dealdesk-backend/pkg/logger"
)

// Websocket hands the authenticated request to the realtime handler.
func Websocket(rt *realtime.Handler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rt.ServeWS(w, r, principal)
	}
}

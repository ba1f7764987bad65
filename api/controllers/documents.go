package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk-backend/api/responses"
	"github.com/dealdesk/dealdesk-backend/api/validators"
	"github.com/dealdesk/dealdesk-backend/internal/documents"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
	"github.com/dealdesk/dealdesk-backend/pkg/logger"
)

// DocumentUpload stores a multipart file for a deal. Form fields: file,
// dealId, and optional allowedUsers (repeated or comma-separated).
func DocumentUpload(svc documents.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		maxBytes := int64(maxUploadMB) << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		dealID, err := uuid.Parse(r.FormValue("dealId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid dealId"))
			return
		}

		allowed, err := parseAllowedUsers(r.Form["allowedUsers"])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file is required"))
			return
		}
		defer file.Close()

		doc, err := svc.Upload(r.Context(), principal, documents.UploadInput{
			DealID:       dealID,
			FileName:     header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
			Body:         file,
			AllowedUsers: allowed,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusCreated, "document uploaded", map[string]any{"document": doc})
	}
}

func parseAllowedUsers(values []string) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid allowedUsers entry").WithDetails(map[string]any{"value": part})
			}
			out = append(out, id)
		}
	}
	return out, nil
}

// DocumentList returns the deal's documents the caller may see.
func DocumentList(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		docs, err := svc.List(r.Context(), principal, dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, "documents retrieved", map[string]any{"documents": docs})
	}
}

// DocumentGrantAccess adds one user to a document's access list. Uploader
// only; granting to an existing grantee is a no-op success.
func DocumentGrantAccess(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req documents.GrantAccessRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.GrantAccess(r.Context(), principal, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, "access granted", map[string]any{"document": doc})
	}
}

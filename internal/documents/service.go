package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
	dbtypes "github.com/dealdesk/dealdesk-backend/pkg/db/types"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
)

// UploadInput carries one multipart file plus its sharing seed.
type UploadInput struct {
	DealID       uuid.UUID
	FileName     string
	ContentType  string
	Body         io.Reader
	AllowedUsers []uuid.UUID
}

// Service defines the document operations consumed by controllers.
type Service interface {
	Upload(ctx context.Context, principal access.Principal, input UploadInput) (*DocumentDTO, error)
	List(ctx context.Context, principal access.Principal, dealID uuid.UUID) ([]DocumentDTO, error)
	GrantAccess(ctx context.Context, principal access.Principal, req GrantAccessRequest) (*DocumentDTO, error)
}

type dealAccessor interface {
	Get(ctx context.Context, principal access.Principal, dealID uuid.UUID) (*models.Deal, error)
}

type objectStore interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) (string, error)
}

type service struct {
	repo    Repository
	deals   dealAccessor
	storage objectStore
}

// ServiceParams bundles the dependencies required to build a documents service.
type ServiceParams struct {
	Repo    Repository
	Deals   dealAccessor
	Storage objectStore
}

// NewService constructs a documents service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("documents repository is required")
	}
	if params.Deals == nil {
		return nil, fmt.Errorf("deal accessor is required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("object store is required")
	}
	return &service{repo: params.Repo, deals: params.Deals, storage: params.Storage}, nil
}

// Upload pushes the file to object storage first; the row is only created
// once storage has confirmed a URL, so a storage failure leaves no record.
func (s *service) Upload(ctx context.Context, principal access.Principal, input UploadInput) (*DocumentDTO, error) {
	if strings.TrimSpace(input.FileName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}

	if _, err := s.deals.Get(ctx, principal, input.DealID); err != nil {
		return nil, err
	}

	object := fmt.Sprintf("deals/%s/%s_%s", input.DealID, uuid.NewString(), path.Base(input.FileName))
	storageURL, err := s.storage.Upload(ctx, object, input.ContentType, input.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload to object storage")
	}

	doc := &models.Document{
		DealID:        input.DealID,
		UploadedBy:    principal.ID,
		StorageURL:    storageURL,
		AccessUserIDs: seedAccessList(principal.ID, input.AllowedUsers),
	}
	if _, err := s.repo.Create(ctx, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create document")
	}

	return FromModel(doc), nil
}

// List returns only documents visible to the principal. The filter is part of
// the read path, not a post-processing courtesy.
func (s *service) List(ctx context.Context, principal access.Principal, dealID uuid.UUID) ([]DocumentDTO, error) {
	if _, err := s.deals.Get(ctx, principal, dealID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list documents")
	}

	visible := make([]models.Document, 0, len(rows))
	for i := range rows {
		if access.CanViewDocument(principal, &rows[i]) {
			visible = append(visible, rows[i])
		}
	}
	return FromModels(visible), nil
}

func (s *service) GrantAccess(ctx context.Context, principal access.Principal, req GrantAccessRequest) (*DocumentDTO, error) {
	doc, err := s.repo.FindByID(ctx, req.DocumentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find document")
	}
	if !access.CanGrantDocumentAccess(principal, doc) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the uploader can grant access")
	}

	// Zero rows means the grantee was already present; re-grants succeed.
	if _, err := s.repo.AppendGrantee(ctx, req.DocumentID, req.UserID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "grant document access")
	}

	updated, err := s.repo.FindByID(ctx, req.DocumentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload document")
	}
	return FromModel(updated), nil
}

func seedAccessList(uploader uuid.UUID, allowed []uuid.UUID) dbtypes.UUIDArray {
	out := dbtypes.UUIDArray{uploader}
	for _, id := range allowed {
		if id == uuid.Nil || out.Contains(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

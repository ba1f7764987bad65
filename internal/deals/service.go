package deals

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
)

// Service defines the deal lifecycle operations consumed by controllers and
// the realtime handler.
type Service interface {
	Create(ctx context.Context, principal access.Principal, req CreateDealRequest) (*DealDTO, error)
	List(ctx context.Context, principal access.Principal) ([]DealDTO, error)
	Get(ctx context.Context, principal access.Principal, dealID uuid.UUID) (*models.Deal, error)
	TransitionStatus(ctx context.Context, principal access.Principal, dealID uuid.UUID, target enums.DealStatus) (*DealDTO, error)
	UpdatePrice(ctx context.Context, principal access.Principal, dealID uuid.UUID, newPrice decimal.Decimal) (*DealDTO, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo  Repository
	users userFinder
	db    txRunner
}

// ServiceParams bundles the dependencies required to build a deals service.
type ServiceParams struct {
	Repo     Repository
	UserRepo userFinder
	DB       txRunner
}

// NewService constructs a deals service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("deals repository is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{repo: params.Repo, users: params.UserRepo, db: params.DB}, nil
}

func (s *service) Create(ctx context.Context, principal access.Principal, req CreateDealRequest) (*DealDTO, error) {
	if !access.CanCreateDeal(principal) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only buyers can create deals")
	}
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if req.SellerID == principal.ID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller must be a different user")
	}

	seller, err := s.users.FindByID(ctx, req.SellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve seller")
	}
	if seller.Role != enums.UserRoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sellerId does not reference a seller")
	}

	deal := &models.Deal{
		BuyerID:     principal.ID,
		SellerID:    req.SellerID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Status:      enums.DealStatusPending,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, deal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create deal")
		}
		change := &models.PriceChange{
			DealID:    deal.ID,
			Price:     req.Price,
			UpdatedBy: principal.ID,
		}
		if err := repo.CreatePriceChange(ctx, change); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed price history")
		}
		deal.PriceHistory = []models.PriceChange{*change}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return FromModel(deal), nil
}

func (s *service) List(ctx context.Context, principal access.Principal) ([]DealDTO, error) {
	var (
		rows []models.Deal
		err  error
	)
	if principal.Role == enums.UserRoleAdmin {
		rows, err = s.repo.ListAll(ctx)
	} else {
		rows, err = s.repo.ListForUser(ctx, principal.ID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list deals")
	}
	return FromModels(rows), nil
}

// Get loads the deal and enforces CanAccessDeal. Chat, documents, and the
// realtime handler all resolve deal access through this path.
func (s *service) Get(ctx context.Context, principal access.Principal, dealID uuid.UUID) (*models.Deal, error) {
	deal, err := s.repo.FindByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find deal")
	}
	if !access.CanAccessDeal(principal, deal) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a party to this deal")
	}
	return deal, nil
}

func (s *service) TransitionStatus(ctx context.Context, principal access.Principal, dealID uuid.UUID, target enums.DealStatus) (*DealDTO, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown deal status")
	}

	deal, err := s.repo.FindByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find deal")
	}
	if !access.CanMutateStatus(principal, deal) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the deal's seller can update status")
	}
	current := deal.Status
	if !current.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition deal from %s to %s", current, target))
	}

	rows, err := s.repo.UpdateStatusFrom(ctx, dealID, current, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update deal status")
	}
	if rows == 0 {
		// A concurrent transition moved the deal first.
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "deal status changed concurrently")
	}

	deal.Status = target
	return FromModel(deal), nil
}

func (s *service) UpdatePrice(ctx context.Context, principal access.Principal, dealID uuid.UUID, newPrice decimal.Decimal) (*DealDTO, error) {
	if newPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	deal, err := s.repo.FindByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find deal")
	}
	if !deal.IsParty(principal.ID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only deal parties can change the price")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdatePrice(ctx, dealID, newPrice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update price")
		}
		change := &models.PriceChange{
			DealID:    dealID,
			Price:     newPrice,
			UpdatedBy: principal.ID,
		}
		if err := repo.CreatePriceChange(ctx, change); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append price history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	deal.Price = newPrice
	return FromModel(deal), nil
}

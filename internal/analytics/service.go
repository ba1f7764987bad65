package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
)

// Activity window for the engagement counter.
const engagementWindow = 7 * 24 * time.Hour

// DealCounts is the per-status breakdown plus the grand total.
type DealCounts struct {
	Total    int64                      `json:"total"`
	ByStatus map[enums.DealStatus]int64 `json:"byStatus"`
}

// Engagement summarizes recent user activity.
type Engagement struct {
	TotalUsers  int64 `json:"totalUsers"`
	ActiveUsers int64 `json:"activeUsers"`
	WindowDays  int   `json:"windowDays"`
}

// Service exposes the admin-only aggregate reads.
type Service interface {
	DealCounts(ctx context.Context, principal access.Principal) (*DealCounts, error)
	Engagement(ctx context.Context, principal access.Principal) (*Engagement, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ServiceParams bundles the dependencies required to build an analytics service.
type ServiceParams struct {
	Repo Repository

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewService constructs an analytics service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("analytics repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) DealCounts(ctx context.Context, principal access.Principal) (*DealCounts, error) {
	if principal.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "analytics are admin only")
	}
	byStatus, err := s.repo.CountDealsByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count deals")
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &DealCounts{Total: total, ByStatus: byStatus}, nil
}

func (s *service) Engagement(ctx context.Context, principal access.Principal) (*Engagement, error) {
	if principal.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "analytics are admin only")
	}
	since := s.now().Add(-engagementWindow)
	active, err := s.repo.CountActiveUsersSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active users")
	}
	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	return &Engagement{
		TotalUsers:  total,
		ActiveUsers: active,
		WindowDays:  int(engagementWindow / (24 * time.Hour)),
	}, nil
}

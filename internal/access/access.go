// Package access is the single authorization surface for the platform. Every
// mutating operation consults one of these predicates before acting; handlers
// and services never compare role or id fields inline.
package access

import (
	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk-backend/pkg/db/models"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
)

// Principal is the authenticated caller as seen by the evaluators.
type Principal struct {
	ID   uuid.UUID
	Role enums.UserRole
}

// CanAccessDeal reports whether the principal may read or act within the deal.
// Parties and admins qualify.
func CanAccessDeal(p Principal, deal *models.Deal) bool {
	if deal == nil {
		return false
	}
	if p.Role == enums.UserRoleAdmin {
		return true
	}
	return deal.IsParty(p.ID)
}

// CanCreateDeal reports whether the principal may open a new deal.
func CanCreateDeal(p Principal) bool {
	return p.Role == enums.UserRoleBuyer
}

// CanMutateStatus reports whether the principal may drive the deal's status
// machine. Only the deal's own seller qualifies.
func CanMutateStatus(p Principal, deal *models.Deal) bool {
	if deal == nil {
		return false
	}
	return p.Role == enums.UserRoleSeller && p.ID == deal.SellerID
}

// CanGrantDocumentAccess reports whether the principal may extend the
// document's access list. Only the uploader qualifies.
func CanGrantDocumentAccess(p Principal, doc *models.Document) bool {
	if doc == nil {
		return false
	}
	return p.ID == doc.UploadedBy
}

// CanViewDocument reports whether the document is visible to the principal.
func CanViewDocument(p Principal, doc *models.Document) bool {
	if doc == nil {
		return false
	}
	return doc.CanBeViewedBy(p.ID)
}

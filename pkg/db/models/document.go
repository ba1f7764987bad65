package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/dealdesk/dealdesk-backend/pkg/db/types"
)

// Document stores uploaded-file metadata and its access list. AccessUserIDs is
// append-only; the uploader is always a member.
type Document struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DealID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"dealId"`
	UploadedBy    uuid.UUID         `gorm:"type:uuid;not null" json:"uploadedBy"`
	StorageURL    string            `gorm:"column:storage_url;type:text;not null" json:"storageUrl"`
	AccessUserIDs dbtypes.UUIDArray `gorm:"type:uuid[];column:access_user_ids;not null;default:'{}'" json:"accessUserIds"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// CanBeViewedBy reports whether the user is the uploader or on the access list.
func (d *Document) CanBeViewedBy(userID uuid.UUID) bool {
	if d == nil {
		return false
	}
	return d.UploadedBy == userID || d.AccessUserIDs.Contains(userID)
}

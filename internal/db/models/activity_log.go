package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityAction string

const (
	ActionNdaSigned       ActivityAction = "nda_signed"
	ActionNdaReset        ActivityAction = "nda_reset"
	ActionDocumentCreated ActivityAction = "document_created"
	ActionDocumentDeleted ActivityAction = "document_deleted"
	ActionVersionCreated  ActivityAction = "document_version_created"
	ActionVersionRestored ActivityAction = "document_version_restored"
	ActionVersionDeleted  ActivityAction = "document_version_deleted"
	ActionGrantAdded      ActivityAction = "document_grant_added"
	ActionGrantRevoked    ActivityAction = "document_grant_revoked"
	ActionGrantsSynced    ActivityAction = "document_grants_synced"
	ActionRoleChanged     ActivityAction = "user_role_changed"
	ActionUserDeleted     ActivityAction = "user_deleted"
	ActionBulkCompleted   ActivityAction = "bulk_operation_completed"
)

// ActivityLogEntry is append-only. Entries are keyed by ULID so the primary
// key sorts in creation order.
type ActivityLogEntry struct {
	ID        string            `gorm:"primaryKey"`
	ActorID   uint              `gorm:"index;not null"`
	Action    ActivityAction    `gorm:"type:varchar(64);not null;index"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"index;not null"`
}

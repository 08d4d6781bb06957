package services

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/crestline-ir/internal/db/models"
	"github.com/crestline-ir/internal/store"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// AuditService appends to the activity log. Writes are fire-and-forget: a
// failed append is logged and dropped so auditing can never fail the action
// it describes. Nothing in the engine reads the log for decisions.
type AuditService struct {
	activity store.ActivityStore
	logger   *zap.Logger
}

func NewAuditService(activity store.ActivityStore, logger *zap.Logger) *AuditService {
	return &AuditService{
		activity: activity,
		logger:   logger.With(zap.String("service", "audit_service")),
	}
}

func (as *AuditService) Record(ctx context.Context, actorID uint, action models.ActivityAction, metadata map[string]interface{}) {
	now := time.Now().UTC()
	entry := &models.ActivityLogEntry{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		ActorID:   actorID,
		Action:    action,
		Metadata:  datatypes.JSONMap(metadata),
		CreatedAt: now,
	}

	if err := as.activity.Append(ctx, entry); err != nil {
		as.logger.Error("audit append failed",
			zap.String("action", string(action)),
			zap.Uint("actor_id", actorID),
			zap.Error(err))
	}
}

type ActivityPage struct {
	Entries []models.ActivityLogEntry
	Total   int64
	Page    int
	PerPage int
}

const maxActivityPageSize = 100

// List returns a page of entries ordered by createdAt descending, for
// administrative review.
func (as *AuditService) List(ctx context.Context, page, perPage int) (*ActivityPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxActivityPageSize {
		perPage = 25
	}

	entries, total, err := as.activity.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	return &ActivityPage{Entries: entries, Total: total, Page: page, PerPage: perPage}, nil
}

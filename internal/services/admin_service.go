package services

import (
	"context"
	"fmt"
	"time"

	"github.com/crestline-ir/internal/db/models"
	"github.com/crestline-ir/internal/notify"
	"github.com/crestline-ir/pkg/metrics"
	"go.uber.org/zap"
)

// AdminService composes the per-target primitives with RunBatch for the bulk
// administrative actions. Eligibility filtering (excluding the acting admin
// from a delete, skipping unsigned users on an NDA reset) is the caller's
// job; these methods execute exactly the targets they are given.
type AdminService struct {
	users    *UserService
	grants   *GrantService
	notifier notify.Notifier
	audit    *AuditService
	logger   *zap.Logger
	metrics  *metrics.MetricsCollector
}

func NewAdminService(
	users *UserService,
	grants *GrantService,
	notifier notify.Notifier,
	audit *AuditService,
	logger *zap.Logger,
	metricsCollector *metrics.MetricsCollector,
) *AdminService {
	return &AdminService{
		users:    users,
		grants:   grants,
		notifier: notifier,
		audit:    audit,
		logger:   logger.With(zap.String("service", "admin_service")),
		metrics:  metricsCollector,
	}
}

func userKey(id uint) string {
	return fmt.Sprint(id)
}

// BulkResetNdas clears the NDA record of each target user and sends each a
// best-effort notification.
func (s *AdminService) BulkResetNdas(ctx context.Context, actorID uint, userIDs []uint) BulkResult {
	start := time.Now()
	result := RunBatch(ctx, userIDs,
		func(ctx context.Context, userID uint) error {
			return s.users.ResetNda(ctx, userID, actorID)
		},
		BatchOptions[uint]{
			Key:    userKey,
			Logger: s.logger,
			AfterSuccess: func(ctx context.Context, userID uint) error {
				return s.notifier.Send(ctx, userID, notify.TemplateNdaReset, nil)
			},
		})

	s.finish(ctx, actorID, "nda_reset", result, start)
	return result
}

// BulkAssignAllDocuments grants every document to each target user.
func (s *AdminService) BulkAssignAllDocuments(ctx context.Context, actorID uint, userIDs []uint) BulkResult {
	start := time.Now()
	result := RunBatch(ctx, userIDs,
		func(ctx context.Context, userID uint) error {
			_, err := s.grants.AssignAllDocumentsToUser(ctx, userID, actorID)
			return err
		},
		BatchOptions[uint]{
			Key:    userKey,
			Logger: s.logger,
			AfterSuccess: func(ctx context.Context, userID uint) error {
				return s.notifier.Send(ctx, userID, notify.TemplateDocumentAssigned, nil)
			},
		})

	s.finish(ctx, actorID, "assign_all_documents", result, start)
	return result
}

// BulkChangeRole moves each target user to the given role.
func (s *AdminService) BulkChangeRole(ctx context.Context, actorID uint, userIDs []uint, role models.UserRole) BulkResult {
	start := time.Now()
	result := RunBatch(ctx, userIDs,
		func(ctx context.Context, userID uint) error {
			return s.users.ChangeRole(ctx, userID, role, actorID)
		},
		BatchOptions[uint]{Key: userKey, Logger: s.logger})

	s.finish(ctx, actorID, "change_role", result, start)
	return result
}

// BulkDeleteUsers removes each target account with its grants and NDA
// record.
func (s *AdminService) BulkDeleteUsers(ctx context.Context, actorID uint, userIDs []uint) BulkResult {
	start := time.Now()
	result := RunBatch(ctx, userIDs,
		func(ctx context.Context, userID uint) error {
			return s.users.DeleteUser(ctx, userID, actorID)
		},
		BatchOptions[uint]{Key: userKey, Logger: s.logger})

	s.finish(ctx, actorID, "delete_users", result, start)
	return result
}

func (s *AdminService) finish(ctx context.Context, actorID uint, operation string, result BulkResult, start time.Time) {
	s.audit.Record(ctx, actorID, models.ActionBulkCompleted, map[string]interface{}{
		"operation": operation,
		"succeeded": result.SuccessCount,
		"failed":    result.FailCount,
	})
	s.metrics.IncrementCounter("bulk."+operation, nil)
	s.metrics.ObserveLatency("bulk."+operation, time.Since(start))
	s.logger.Info("Bulk operation completed",
		zap.String("operation", operation),
		zap.Int("succeeded", result.SuccessCount),
		zap.Int("failed", result.FailCount))
}

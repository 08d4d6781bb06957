package services

import (
	"context"

	"github.com/crestline-ir/internal/db/models"
	"github.com/crestline-ir/internal/store"
	"github.com/crestline-ir/pkg/metrics"
	"go.uber.org/zap"
)

// GrantService owns the user/document visibility relation. Grant and Revoke
// are idempotent so ordinary callers never observe the store's uniqueness
// boundary.
type GrantService struct {
	documents store.DocumentStore
	grants    store.GrantStore
	audit     *AuditService
	logger    *zap.Logger
	metrics   *metrics.MetricsCollector
}

func NewGrantService(stores *store.Stores, audit *AuditService, logger *zap.Logger, metricsCollector *metrics.MetricsCollector) *GrantService {
	return &GrantService{
		documents: stores.Documents,
		grants:    stores.Grants,
		audit:     audit,
		logger:    logger.With(zap.String("service", "grant_service")),
		metrics:   metricsCollector,
	}
}

// Grant authorizes a user for a document. Granting an already-granted pair is
// a no-op success.
func (gs *GrantService) Grant(ctx context.Context, documentID string, userID, grantedBy uint) error {
	if _, err := gs.documents.Get(ctx, documentID); err != nil {
		return err
	}

	_, err := gs.grants.Get(ctx, documentID, userID)
	if err == nil {
		return nil
	}
	if !store.IsNotFound(err) {
		return err
	}

	err = gs.grants.Create(ctx, &models.AccessGrant{
		DocumentID: documentID,
		UserID:     userID,
		GrantedBy:  grantedBy,
	})
	if err != nil {
		// A concurrent grant of the same pair still satisfies the caller.
		if store.IsConflict(err) {
			return nil
		}
		return err
	}

	gs.audit.Record(ctx, grantedBy, models.ActionGrantAdded, map[string]interface{}{
		"document_id": documentID,
		"user_id":     userID,
	})
	gs.metrics.IncrementCounter("grants.added", nil)
	return nil
}

// Revoke removes a user's authorization. Revoking a non-existent grant is a
// no-op success.
func (gs *GrantService) Revoke(ctx context.Context, documentID string, userID, actorID uint) error {
	_, err := gs.grants.Get(ctx, documentID, userID)
	if store.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := gs.grants.Delete(ctx, documentID, userID); err != nil {
		return err
	}

	gs.audit.Record(ctx, actorID, models.ActionGrantRevoked, map[string]interface{}{
		"document_id": documentID,
		"user_id":     userID,
	})
	gs.metrics.IncrementCounter("grants.revoked", nil)
	return nil
}

// SyncGrants reconciles a document's grant set against the desired user set,
// applying only the difference: removals first, then additions. The audit
// trail records actual change counts, not the full desired set.
func (gs *GrantService) SyncGrants(ctx context.Context, documentID string, desiredUserIDs []uint, actorID uint) error {
	if _, err := gs.documents.Get(ctx, documentID); err != nil {
		return err
	}

	current, err := gs.grants.ListByDocument(ctx, documentID)
	if err != nil {
		return err
	}

	desired := make(map[uint]bool, len(desiredUserIDs))
	for _, id := range desiredUserIDs {
		desired[id] = true
	}
	existing := make(map[uint]bool, len(current))
	for _, g := range current {
		existing[g.UserID] = true
	}

	var toRemove, toAdd []uint
	for userID := range existing {
		if !desired[userID] {
			toRemove = append(toRemove, userID)
		}
	}
	for userID := range desired {
		if !existing[userID] {
			toAdd = append(toAdd, userID)
		}
	}

	for _, userID := range toRemove {
		if err := gs.grants.Delete(ctx, documentID, userID); err != nil {
			return err
		}
	}
	for _, userID := range toAdd {
		err := gs.grants.Create(ctx, &models.AccessGrant{
			DocumentID: documentID,
			UserID:     userID,
			GrantedBy:  actorID,
		})
		if err != nil && !store.IsConflict(err) {
			return err
		}
	}

	if len(toAdd) > 0 || len(toRemove) > 0 {
		gs.audit.Record(ctx, actorID, models.ActionGrantsSynced, map[string]interface{}{
			"document_id": documentID,
			"added":       len(toAdd),
			"removed":     len(toRemove),
		})
	}
	gs.logger.Info("Grants synced",
		zap.String("document_id", documentID),
		zap.Int("added", len(toAdd)),
		zap.Int("removed", len(toRemove)))
	return nil
}

// AssignAllDocumentsToUser grants every document to one user, inserting only
// the missing pairs.
func (gs *GrantService) AssignAllDocumentsToUser(ctx context.Context, userID, grantedBy uint) (int, error) {
	docs, err := gs.documents.List(ctx)
	if err != nil {
		return 0, err
	}

	current, err := gs.grants.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	held := make(map[string]bool, len(current))
	for _, g := range current {
		held[g.DocumentID] = true
	}

	added := 0
	for _, doc := range docs {
		if held[doc.ID] {
			continue
		}
		err := gs.grants.Create(ctx, &models.AccessGrant{
			DocumentID: doc.ID,
			UserID:     userID,
			GrantedBy:  grantedBy,
		})
		if err != nil && !store.IsConflict(err) {
			return added, err
		}
		added++
	}

	if added > 0 {
		gs.audit.Record(ctx, grantedBy, models.ActionGrantsSynced, map[string]interface{}{
			"user_id": userID,
			"added":   added,
			"removed": 0,
		})
	}
	gs.metrics.IncrementCounter("grants.assigned_all", nil)
	return added, nil
}

// ListGrantedUserIDs returns the ids of users holding a grant on a document.
func (gs *GrantService) ListGrantedUserIDs(ctx context.Context, documentID string) ([]uint, error) {
	grants, err := gs.grants.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(grants))
	for i, g := range grants {
		ids[i] = g.UserID
	}
	return ids, nil
}

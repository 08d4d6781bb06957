package services

import (
	"context"

	"github.com/crestline-ir/internal/db/models"
	"github.com/crestline-ir/internal/store"
	"github.com/crestline-ir/pkg/metrics"
	"go.uber.org/zap"
)

// AccessService is the read-side gate. A signed NDA is a hard precondition:
// without it no grant has any effect. The gate never mutates state and never
// retries; store failures propagate raw.
type AccessService struct {
	documents store.DocumentStore
	grants    store.GrantStore
	ndaStatus store.NdaStatusStore
	logger    *zap.Logger
	metrics   *metrics.MetricsCollector
}

func NewAccessService(stores *store.Stores, logger *zap.Logger, metricsCollector *metrics.MetricsCollector) *AccessService {
	return &AccessService{
		documents: stores.Documents,
		grants:    stores.Grants,
		ndaStatus: stores.NdaStatus,
		logger:    logger.With(zap.String("service", "access_service")),
		metrics:   metricsCollector,
	}
}

// CanAccess decides whether one user may see one document.
func (s *AccessService) CanAccess(ctx context.Context, userID uint, documentID string) (bool, error) {
	status, err := s.ndaStatus.GetByUser(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if !status.Signed {
		return false, nil
	}

	_, err = s.grants.Get(ctx, documentID, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetVisibleDocument returns one document after the gate allows it, or a
// NotFoundError so callers cannot distinguish hidden documents from absent
// ones.
func (s *AccessService) GetVisibleDocument(ctx context.Context, userID uint, documentID string) (*models.Document, error) {
	allowed, err := s.CanAccess(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &store.NotFoundError{Entity: "document", ID: documentID}
	}
	return s.documents.Get(ctx, documentID)
}

// ListVisibleDocuments returns the documents the user may open, newest first.
// Unsigned users get an empty list regardless of grants. The result is
// computed fresh on every call, never cached.
func (s *AccessService) ListVisibleDocuments(ctx context.Context, userID uint) ([]models.Document, error) {
	status, err := s.ndaStatus.GetByUser(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !status.Signed {
		s.metrics.IncrementCounter("access.denied_unsigned", nil)
		return nil, nil
	}

	grants, err := s.grants.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		return nil, nil
	}

	ids := make([]string, len(grants))
	for i, g := range grants {
		ids[i] = g.DocumentID
	}

	docs, err := s.documents.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCounter("access.documents_listed", nil)
	return docs, nil
}

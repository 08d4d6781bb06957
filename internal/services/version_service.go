package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/crestline-ir/internal/blob"
	"github.com/crestline-ir/internal/db/models"
	"github.com/crestline-ir/internal/store"
	"github.com/crestline-ir/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VersionService owns document lifecycle and version history. Version numbers
// are strictly increasing per document and never reused; the version equal to
// the document's currentVersion can never be deleted.
type VersionService struct {
	documents store.DocumentStore
	versions  store.VersionStore
	grants    store.GrantStore
	blobs     blob.Store
	audit     *AuditService
	logger    *zap.Logger
	metrics   *metrics.MetricsCollector

	// Serializes version-number assignment per document so concurrent
	// createVersion calls cannot race on the next number.
	docLocks sync.Map
}

func NewVersionService(
	stores *store.Stores,
	blobs blob.Store,
	audit *AuditService,
	logger *zap.Logger,
	metricsCollector *metrics.MetricsCollector,
) *VersionService {
	return &VersionService{
		documents: stores.Documents,
		versions:  stores.Versions,
		grants:    stores.Grants,
		blobs:     blobs,
		audit:     audit,
		logger:    logger.With(zap.String("service", "version_service")),
		metrics:   metricsCollector,
	}
}

func (vs *VersionService) lockDocument(documentID string) func() {
	mu, _ := vs.docLocks.LoadOrStore(documentID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// CreateDocument creates the document row together with its version 1, which
// is immediately current.
func (vs *VersionService) CreateDocument(ctx context.Context, title, description, fileRef string, fileSize int64, creatorID uint, notes string) (*models.Document, error) {
	if title == "" {
		return nil, validationErrorf("document title is required")
	}

	doc := &models.Document{
		ID:              uuid.New().String(),
		Title:           title,
		Description:     description,
		CurrentVersion:  1,
		CurrentFileRef:  fileRef,
		CurrentFileSize: fileSize,
		CreatedBy:       creatorID,
	}
	if err := vs.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	first := &models.DocumentVersion{
		DocumentID:    doc.ID,
		VersionNumber: 1,
		FileRef:       fileRef,
		FileSize:      fileSize,
		UploadedBy:    creatorID,
		Notes:         notes,
	}
	if err := vs.versions.Create(ctx, first); err != nil {
		return nil, err
	}

	vs.audit.Record(ctx, creatorID, models.ActionDocumentCreated, map[string]interface{}{
		"document_id": doc.ID,
		"title":       title,
	})
	vs.metrics.IncrementCounter("documents.created", nil)
	vs.logger.Info("Document created",
		zap.String("document_id", doc.ID),
		zap.String("title", title))
	return doc, nil
}

// CreateVersion stages a new version. The document's current version is not
// touched; promotion happens through RestoreVersion.
func (vs *VersionService) CreateVersion(ctx context.Context, documentID, fileRef string, fileSize int64, uploaderID uint, notes string) (*models.DocumentVersion, error) {
	unlock := vs.lockDocument(documentID)
	defer unlock()

	if _, err := vs.documents.Get(ctx, documentID); err != nil {
		return nil, err
	}

	max, err := vs.versions.MaxVersionNumber(ctx, documentID)
	if err != nil {
		return nil, err
	}

	version := &models.DocumentVersion{
		DocumentID:    documentID,
		VersionNumber: max + 1,
		FileRef:       fileRef,
		FileSize:      fileSize,
		UploadedBy:    uploaderID,
		Notes:         notes,
	}
	if err := vs.versions.Create(ctx, version); err != nil {
		return nil, err
	}

	vs.audit.Record(ctx, uploaderID, models.ActionVersionCreated, map[string]interface{}{
		"document_id":    documentID,
		"version_number": version.VersionNumber,
	})
	vs.metrics.IncrementCounter("versions.created", nil)
	vs.metrics.ObserveSize("versions.file_size", float64(fileSize))
	return version, nil
}

// RestoreVersion points the document at the target version. Restoring the
// version that is already current is a no-op success.
func (vs *VersionService) RestoreVersion(ctx context.Context, documentID string, versionNumber int, actorID uint) (*models.Document, error) {
	unlock := vs.lockDocument(documentID)
	defer unlock()

	doc, err := vs.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	target, err := vs.versions.Get(ctx, documentID, versionNumber)
	if err != nil {
		return nil, err
	}

	if doc.CurrentVersion == versionNumber {
		return doc, nil
	}

	if err := vs.documents.SetCurrent(ctx, documentID, target.VersionNumber, target.FileRef, target.FileSize); err != nil {
		return nil, err
	}

	doc.CurrentVersion = target.VersionNumber
	doc.CurrentFileRef = target.FileRef
	doc.CurrentFileSize = target.FileSize

	vs.audit.Record(ctx, actorID, models.ActionVersionRestored, map[string]interface{}{
		"document_id":    documentID,
		"version_number": versionNumber,
	})
	vs.metrics.IncrementCounter("versions.restored", nil)
	vs.logger.Info("Version restored",
		zap.String("document_id", documentID),
		zap.Int("version_number", versionNumber))
	return doc, nil
}

// DeleteVersion removes a superseded version. The current version is
// protected; callers must restore another version first. The underlying blob
// is removed best-effort: an orphaned blob is preferred over stale metadata.
func (vs *VersionService) DeleteVersion(ctx context.Context, documentID string, versionNumber int, actorID uint) error {
	unlock := vs.lockDocument(documentID)
	defer unlock()

	doc, err := vs.documents.Get(ctx, documentID)
	if err != nil {
		return err
	}

	target, err := vs.versions.Get(ctx, documentID, versionNumber)
	if err != nil {
		return err
	}

	if doc.CurrentVersion == versionNumber {
		return validationErrorf("cannot delete the active version %d of document %s", versionNumber, documentID)
	}

	vs.removeBlob(ctx, target.FileRef)

	if err := vs.versions.Delete(ctx, documentID, versionNumber); err != nil {
		return err
	}

	vs.audit.Record(ctx, actorID, models.ActionVersionDeleted, map[string]interface{}{
		"document_id":    documentID,
		"version_number": versionNumber,
	})
	vs.metrics.IncrementCounter("versions.deleted", nil)
	return nil
}

// DeleteDocument cascades: all version blobs, all version rows, all grants,
// then the document itself. Not undoable.
func (vs *VersionService) DeleteDocument(ctx context.Context, documentID string, actorID uint) error {
	unlock := vs.lockDocument(documentID)
	defer unlock()

	doc, err := vs.documents.Get(ctx, documentID)
	if err != nil {
		return err
	}

	versions, err := vs.versions.ListByDocument(ctx, documentID)
	if err != nil {
		return err
	}
	for _, v := range versions {
		vs.removeBlob(ctx, v.FileRef)
	}

	if err := vs.versions.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	if err := vs.grants.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	if err := vs.documents.Delete(ctx, documentID); err != nil {
		return err
	}

	vs.audit.Record(ctx, actorID, models.ActionDocumentDeleted, map[string]interface{}{
		"document_id":   documentID,
		"title":         doc.Title,
		"version_count": len(versions),
	})
	vs.metrics.IncrementCounter("documents.deleted", nil)
	vs.logger.Info("Document deleted",
		zap.String("document_id", documentID),
		zap.Int("versions", len(versions)))
	return nil
}

// ListVersions returns a document's full history, oldest first.
func (vs *VersionService) ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	if _, err := vs.documents.Get(ctx, documentID); err != nil {
		return nil, err
	}
	return vs.versions.ListByDocument(ctx, documentID)
}

func (vs *VersionService) removeBlob(ctx context.Context, ref string) {
	if err := vs.blobs.Remove(ctx, ref); err != nil {
		vs.logger.Warn("blob removal failed, metadata deletion proceeds",
			zap.String("file_ref", ref),
			zap.Error(err))
		vs.metrics.IncrementCounter("blobs.orphaned", nil)
	}
}

// VersionFileRef builds the object key for a new version upload. Keys are
// random per upload so re-uploads never collide with deleted blobs.
func VersionFileRef(documentID string) string {
	return fmt.Sprintf("documents/%s/%s", documentID, uuid.New().String())
}

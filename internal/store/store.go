// Package store abstracts persistence behind typed repositories per entity so
// the services' invariant logic can be exercised without a live backend.
package store

import (
	"context"
	"time"

	"github.com/crestline-ir/internal/db/models"
)

type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
	// List returns all documents ordered by creation time descending.
	List(ctx context.Context) ([]models.Document, error)
	// ListByIDs returns the named documents ordered by creation time
	// descending. Unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]models.Document, error)
	// SetCurrent updates the current-version pointer and its file fields in
	// one write. Readers never observe a partially updated document.
	SetCurrent(ctx context.Context, id string, version int, fileRef string, fileSize int64) error
	Delete(ctx context.Context, id string) error
}

type VersionStore interface {
	Create(ctx context.Context, v *models.DocumentVersion) error
	Get(ctx context.Context, documentID string, versionNumber int) (*models.DocumentVersion, error)
	// ListByDocument returns versions ordered by version number ascending.
	ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error)
	// MaxVersionNumber returns 0 for a document with no versions.
	MaxVersionNumber(ctx context.Context, documentID string) (int, error)
	Delete(ctx context.Context, documentID string, versionNumber int) error
	DeleteByDocument(ctx context.Context, documentID string) error
}

type GrantStore interface {
	Create(ctx context.Context, g *models.AccessGrant) error
	Get(ctx context.Context, documentID string, userID uint) (*models.AccessGrant, error)
	ListByDocument(ctx context.Context, documentID string) ([]models.AccessGrant, error)
	ListByUser(ctx context.Context, userID uint) ([]models.AccessGrant, error)
	Delete(ctx context.Context, documentID string, userID uint) error
	DeleteByDocument(ctx context.Context, documentID string) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type NdaStatusStore interface {
	Create(ctx context.Context, s *models.NdaStatus) error
	GetByUser(ctx context.Context, userID uint) (*models.NdaStatus, error)
	// SetSigned sets signed=true and signedAt together.
	SetSigned(ctx context.Context, userID uint, signedAt time.Time) error
	// Clear sets signed=false and signedAt=null together.
	Clear(ctx context.Context, userID uint) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id uint, role models.UserRole) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

type ActivityStore interface {
	Append(ctx context.Context, e *models.ActivityLogEntry) error
	// List returns entries ordered by createdAt descending, with the total
	// count for pagination.
	List(ctx context.Context, offset, limit int) ([]models.ActivityLogEntry, int64, error)
}

// Stores bundles the repositories for wiring.
type Stores struct {
	Documents DocumentStore
	Versions  VersionStore
	Grants    GrantStore
	NdaStatus NdaStatusStore
	Users     UserStore
	Activity  ActivityStore
}

package store

import (
	"context"

	"github.com/crestline-ir/internal/db/models"
	"gorm.io/gorm"
)

type gormDocumentStore struct {
	db *gorm.DB
}

func NewDocumentStore(db *gorm.DB) DocumentStore {
	return &gormDocumentStore{db: db}
}

func (s *gormDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	err := s.db.WithContext(ctx).Create(doc).Error
	return translate("create document", "document", doc.ID, err)
}

func (s *gormDocumentStore) Get(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, translate("get document", "document", id, err)
	}
	return &doc, nil
}

func (s *gormDocumentStore) List(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, translate("list documents", "document", "", err)
	}
	return docs, nil
}

func (s *gormDocumentStore) ListByIDs(ctx context.Context, ids []string) ([]models.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var docs []models.Document
	if err := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, translate("list documents by id", "document", "", err)
	}
	return docs, nil
}

func (s *gormDocumentStore) SetCurrent(ctx context.Context, id string, version int, fileRef string, fileSize int64) error {
	res := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_version":   version,
			"current_file_ref":  fileRef,
			"current_file_size": fileSize,
		})
	if res.Error != nil {
		return translate("set current version", "document", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "document", ID: id}
	}
	return nil
}

func (s *gormDocumentStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Unscoped().
		Where("id = ?", id).
		Delete(&models.Document{}).Error
	return translate("delete document", "document", id, err)
}

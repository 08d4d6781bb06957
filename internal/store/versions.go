package store

import (
	"context"
	"fmt"

	"github.com/crestline-ir/internal/db/models"
	"gorm.io/gorm"
)

type gormVersionStore struct {
	db *gorm.DB
}

func NewVersionStore(db *gorm.DB) VersionStore {
	return &gormVersionStore{db: db}
}

func versionKey(documentID string, versionNumber int) string {
	return fmt.Sprintf("%s/v%d", documentID, versionNumber)
}

func (s *gormVersionStore) Create(ctx context.Context, v *models.DocumentVersion) error {
	err := s.db.WithContext(ctx).Create(v).Error
	return translate("create version", "document version", versionKey(v.DocumentID, v.VersionNumber), err)
}

func (s *gormVersionStore) Get(ctx context.Context, documentID string, versionNumber int) (*models.DocumentVersion, error) {
	var v models.DocumentVersion
	err := s.db.WithContext(ctx).
		Where("document_id = ? AND version_number = ?", documentID, versionNumber).
		First(&v).Error
	if err != nil {
		return nil, translate("get version", "document version", versionKey(documentID, versionNumber), err)
	}
	return &v, nil
}

func (s *gormVersionStore) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	var versions []models.DocumentVersion
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("version_number ASC").
		Find(&versions).Error
	if err != nil {
		return nil, translate("list versions", "document version", documentID, err)
	}
	return versions, nil
}

func (s *gormVersionStore) MaxVersionNumber(ctx context.Context, documentID string) (int, error) {
	var max *int
	err := s.db.WithContext(ctx).
		Model(&models.DocumentVersion{}).
		Where("document_id = ?", documentID).
		Select("MAX(version_number)").
		Scan(&max).Error
	if err != nil {
		return 0, translate("max version number", "document version", documentID, err)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (s *gormVersionStore) Delete(ctx context.Context, documentID string, versionNumber int) error {
	err := s.db.WithContext(ctx).
		Unscoped().
		Where("document_id = ? AND version_number = ?", documentID, versionNumber).
		Delete(&models.DocumentVersion{}).Error
	return translate("delete version", "document version", versionKey(documentID, versionNumber), err)
}

func (s *gormVersionStore) DeleteByDocument(ctx context.Context, documentID string) error {
	err := s.db.WithContext(ctx).
		Unscoped().
		Where("document_id = ?", documentID).
		Delete(&models.DocumentVersion{}).Error
	return translate("delete versions", "document version", documentID, err)
}

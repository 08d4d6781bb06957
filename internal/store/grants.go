package store

import (
	"context"
	"fmt"

	"github.com/crestline-ir/internal/db/models"
	"gorm.io/gorm"
)

type gormGrantStore struct {
	db *gorm.DB
}

func NewGrantStore(db *gorm.DB) GrantStore {
	return &gormGrantStore{db: db}
}

func grantKey(documentID string, userID uint) string {
	return fmt.Sprintf("%s/%d", documentID, userID)
}

func (s *gormGrantStore) Create(ctx context.Context, g *models.AccessGrant) error {
	err := s.db.WithContext(ctx).Create(g).Error
	return translate("create grant", "access grant", grantKey(g.DocumentID, g.UserID), err)
}

func (s *gormGrantStore) Get(ctx context.Context, documentID string, userID uint) (*models.AccessGrant, error) {
	var g models.AccessGrant
	err := s.db.WithContext(ctx).
		Where("document_id = ? AND user_id = ?", documentID, userID).
		First(&g).Error
	if err != nil {
		return nil, translate("get grant", "access grant", grantKey(documentID, userID), err)
	}
	return &g, nil
}

func (s *gormGrantStore) ListByDocument(ctx context.Context, documentID string) ([]models.AccessGrant, error) {
	var grants []models.AccessGrant
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Find(&grants).Error
	if err != nil {
		return nil, translate("list grants by document", "access grant", documentID, err)
	}
	return grants, nil
}

func (s *gormGrantStore) ListByUser(ctx context.Context, userID uint) ([]models.AccessGrant, error) {
	var grants []models.AccessGrant
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&grants).Error
	if err != nil {
		return nil, translate("list grants by user", "access grant", fmt.Sprint(userID), err)
	}
	return grants, nil
}

func (s *gormGrantStore) Delete(ctx context.Context, documentID string, userID uint) error {
	err := s.db.WithContext(ctx).
		Unscoped().
		Where("document_id = ? AND user_id = ?", documentID, userID).
		Delete(&models.AccessGrant{}).Error
	return translate("delete grant", "access grant", grantKey(documentID, userID), err)
}

func (s *gormGrantStore) DeleteByDocument(ctx context.Context, documentID string) error {
	err := s.db.WithContext(ctx).
		Unscoped().
		Where("document_id = ?", documentID).
		Delete(&models.AccessGrant{}).Error
	return translate("delete grants by document", "access grant", documentID, err)
}

func (s *gormGrantStore) DeleteByUser(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).
		Unscoped().
		Where("user_id = ?", userID).
		Delete(&models.AccessGrant{}).Error
	return translate("delete grants by user", "access grant", fmt.Sprint(userID), err)
}

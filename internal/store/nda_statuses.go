package store

import (
	"context"
	"fmt"
	"time"

	"github.com/crestline-ir/internal/db/models"
	"gorm.io/gorm"
)

type gormNdaStatusStore struct {
	db *gorm.DB
}

func NewNdaStatusStore(db *gorm.DB) NdaStatusStore {
	return &gormNdaStatusStore{db: db}
}

func (s *gormNdaStatusStore) Create(ctx context.Context, status *models.NdaStatus) error {
	err := s.db.WithContext(ctx).Create(status).Error
	return translate("create nda status", "nda status", fmt.Sprint(status.UserID), err)
}

func (s *gormNdaStatusStore) GetByUser(ctx context.Context, userID uint) (*models.NdaStatus, error) {
	var status models.NdaStatus
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&status).Error
	if err != nil {
		return nil, translate("get nda status", "nda status", fmt.Sprint(userID), err)
	}
	return &status, nil
}

// SetSigned and Clear always write both fields in one update so the
// signed/signedAt pairing invariant holds at every point in time.

func (s *gormNdaStatusStore) SetSigned(ctx context.Context, userID uint, signedAt time.Time) error {
	return s.setFields(ctx, userID, true, &signedAt)
}

func (s *gormNdaStatusStore) Clear(ctx context.Context, userID uint) error {
	return s.setFields(ctx, userID, false, nil)
}

func (s *gormNdaStatusStore) setFields(ctx context.Context, userID uint, signed bool, signedAt *time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.NdaStatus{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"signed":    signed,
			"signed_at": signedAt,
		})
	if res.Error != nil {
		return translate("update nda status", "nda status", fmt.Sprint(userID), res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "nda status", ID: fmt.Sprint(userID)}
	}
	return nil
}

func (s *gormNdaStatusStore) DeleteByUser(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).
		Unscoped().
		Where("user_id = ?", userID).
		Delete(&models.NdaStatus{}).Error
	return translate("delete nda status", "nda status", fmt.Sprint(userID), err)
}

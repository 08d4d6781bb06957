package store

import (
	"context"

	"github.com/crestline-ir/internal/db/models"
	"gorm.io/gorm"
)

type gormActivityStore struct {
	db *gorm.DB
}

func NewActivityStore(db *gorm.DB) ActivityStore {
	return &gormActivityStore{db: db}
}

func (s *gormActivityStore) Append(ctx context.Context, e *models.ActivityLogEntry) error {
	err := s.db.WithContext(ctx).Create(e).Error
	return translate("append activity", "activity entry", e.ID, err)
}

func (s *gormActivityStore) List(ctx context.Context, offset, limit int) ([]models.ActivityLogEntry, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.ActivityLogEntry{}).
		Count(&total).Error; err != nil {
		return nil, 0, translate("count activity", "activity entry", "", err)
	}

	var entries []models.ActivityLogEntry
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, translate("list activity", "activity entry", "", err)
	}
	return entries, total, nil
}

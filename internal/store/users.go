package store

import (
	"context"
	"fmt"
	"time"

	"github.com/crestline-ir/internal/db/models"
	"gorm.io/gorm"
)

type gormUserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

func (s *gormUserStore) Create(ctx context.Context, u *models.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	return translate("create user", "user", u.Email, err)
}

func (s *gormUserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate("get user", "user", fmt.Sprint(id), err)
	}
	return &u, nil
}

func (s *gormUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate("get user by email", "user", email, err)
	}
	return &u, nil
}

func (s *gormUserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, translate("list users", "user", "", err)
	}
	return users, nil
}

func (s *gormUserStore) UpdateRole(ctx context.Context, id uint, role models.UserRole) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return translate("update role", "user", fmt.Sprint(id), res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "user", ID: fmt.Sprint(id)}
	}
	return nil
}

func (s *gormUserStore) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error
	return translate("update last login", "user", fmt.Sprint(id), err)
}

func (s *gormUserStore) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).
		Unscoped().
		Delete(&models.User{}, id).Error
	return translate("delete user", "user", fmt.Sprint(id), err)
}

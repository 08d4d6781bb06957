package models

import (
	"gorm.io/gorm"
)

type AccessGrant struct {
	gorm.Model
	DocumentID string `gorm:"index:idx_grant_document_user,unique;not null"`
	UserID     uint   `gorm:"index:idx_grant_document_user,unique;not null"`
	GrantedBy  uint
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// NdaStatus is the per-user signature record. Signed and SignedAt move
// together: the e-signature webhook sets both, an admin reset clears both.
type NdaStatus struct {
	gorm.Model
	UserID   uint `gorm:"uniqueIndex;not null"`
	Signed   bool `gorm:"not null;default:false"`
	SignedAt *time.Time
}

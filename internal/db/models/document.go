package models

import (
	"gorm.io/gorm"
)

// Document is the logical document shown to investors. CurrentVersion always
// equals the VersionNumber of one existing DocumentVersion of this document.
type Document struct {
	gorm.Model
	ID              string `gorm:"primaryKey"`
	Title           string `gorm:"not null"`
	Description     string
	CurrentVersion  int    `gorm:"not null;default:1"`
	CurrentFileRef  string `gorm:"not null"`
	CurrentFileSize int64  `gorm:"not null;default:0"`
	CreatedBy       uint   `gorm:"index"`
}

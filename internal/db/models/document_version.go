package models

import (
	"gorm.io/gorm"
)

// DocumentVersion numbers are strictly increasing per document and never
// reused, even after deletion.
type DocumentVersion struct {
	gorm.Model
	DocumentID    string `gorm:"index:idx_document_version,unique;not null"`
	VersionNumber int    `gorm:"index:idx_document_version,unique;not null"`
	FileRef       string `gorm:"not null"`
	FileSize      int64  `gorm:"not null;default:0"`
	UploadedBy    uint
	Notes         string
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleInvestor UserRole = "INVESTOR"
	RoleAdmin    UserRole = "ADMIN"
)

type User struct {
	gorm.Model
	Email        string   `gorm:"unique;not null"`
	DisplayName  string   `gorm:"not null"`
	PasswordHash string   `gorm:"not null"` // Bcrypt hash of password
	Role         UserRole `gorm:"not null;default:'INVESTOR'"`
	ActiveStatus bool     `gorm:"not null;default:true"`
	LastLogin    time.Time
}

package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName     string     `gorm:"column:first_name;not null"`
	LastName      string     `gorm:"column:last_name;not null"`
	Email         string     `gorm:"column:email;unique;not null"`
	Password      string     `gorm:"column:password;not null"`
	Avatar        string     `gorm:"column:avatar"`
	EmailVerified bool       `gorm:"column:email_verified;default:false;not null"`
	LastLoginAt   *time.Time `gorm:"column:last_login_at"`

	RefreshTokens       []RefreshToken       `gorm:"constraint:OnDelete:CASCADE"`
	PasswordResetTokens []PasswordResetToken `gorm:"constraint:OnDelete:CASCADE"`
}

package model

import (
	"time"
)

// RefreshToken is one active session grant. A user holds many. The row is
// deleted on logout, rotation, expiry detection, or en masse on password
// change/reset. ID doubles as the token_id claim inside the signed refresh
// token so a session can be revoked without decoding every token.
type RefreshToken struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uint      `gorm:"column:user_id;not null;index"`
	Token     string    `gorm:"column:token;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// PasswordResetToken is a one-time credential-recovery grant. Only the
// SHA-256 digest of the raw token is stored; the raw value is the bearer
// secret and never touches the database. Used rows are kept for audit.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"column:user_id;not null;index"`
	TokenHash string    `gorm:"column:token_hash;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	Used      bool      `gorm:"column:used;default:false;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

package service

import (
	"context"

	"github.com/teamforge/backend/internal/model"
)

// Store interfaces consumed by the services. The gorm repositories satisfy
// them; tests substitute in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	UpdateLastLogin(ctx context.Context, id uint) error
}

type RefreshTokenStore interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteByUserAndToken(ctx context.Context, userID uint, token string) error
	DeleteAllForUser(ctx context.Context, userID uint) (int64, error)
}

type PasswordResetStore interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	GetByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uint) error
	DeleteUnusedForUser(ctx context.Context, userID uint) (int64, error)
}

type OrganizationStore interface {
	CreateWithOwner(ctx context.Context, org *model.Organization) error
	GetByID(ctx context.Context, id uint) (*model.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*model.Organization, error)
	ListByMember(ctx context.Context, userID uint, limit, offset int) ([]model.Organization, int64, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	GetMembership(ctx context.Context, userID, organizationID uint) (*model.OrganizationMember, error)
}

type MembershipStore interface {
	GetMembership(ctx context.Context, userID, organizationID uint) (*model.OrganizationMember, error)
}

// ResetTokenSender delivers a raw reset token to its owner. The production
// implementation sends email; the core never logs or stores the raw value.
type ResetTokenSender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, rawToken string) error
}

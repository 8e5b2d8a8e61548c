package repository

import (
	"context"

	"github.com/teamforge/backend/internal/model"
	ctxutil "github.com/teamforge/backend/pkg/context"
	"github.com/teamforge/backend/pkg/logger"
	"gorm.io/gorm"
)

// PasswordResetRepository persists one-time reset grants. Rows are looked
// up by token digest, never by the raw token.
type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "PasswordResetCreate")

	result := r.db.WithContext(ctx).Create(token)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create password reset token").
			Uint("user_id", token.UserID).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

func (r *PasswordResetRepository) GetByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "PasswordResetGetByHash")

	var row model.PasswordResetToken
	result := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&row)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to look up password reset token").
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &row, nil
}

// MarkUsed flips the used flag. The row is retained as an audit record.
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "PasswordResetMarkUsed")

	result := r.db.WithContext(ctx).Model(&model.PasswordResetToken{}).Where("id = ?", id).Update("used", true)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to mark password reset token used").
			Uint("token_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// DeleteUnusedForUser clears any pending reset grants so at most one live
// token exists per user
func (r *PasswordResetRepository) DeleteUnusedForUser(ctx context.Context, userID uint) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "PasswordResetDeleteUnusedForUser")

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND used = ?", userID, false).
		Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete pending reset tokens").
			Uint("user_id", userID).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

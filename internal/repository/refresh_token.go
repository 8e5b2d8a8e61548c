package repository

import (
	"context"
	"time"

	"github.com/teamforge/backend/internal/model"
	ctxutil "github.com/teamforge/backend/pkg/context"
	"github.com/teamforge/backend/pkg/logger"
	"gorm.io/gorm"
)

// RefreshTokenRepository persists the active-session ledger. Token values
// are unique and indexed, the lookup by raw token is the refresh hot path.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "RefreshTokenCreate")

	result := r.db.WithContext(ctx).Create(token)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create refresh token").
			Uint("user_id", token.UserID).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "RefreshTokenGetByToken")

	var row model.RefreshToken
	result := r.db.WithContext(ctx).Where("token = ?", token).First(&row)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to look up refresh token").
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &row, nil
}

// DeleteByID removes one ledger row. The caller learns through the zero
// rows-affected case that a concurrent rotation already consumed the token.
func (r *RefreshTokenRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "RefreshTokenDeleteByID")

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.RefreshToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete refresh token").
			String("token_id", id).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// DeleteByUserAndToken removes the row matching both owner and token value.
// Used by single-device logout; deleting an absent row is not an error.
func (r *RefreshTokenRepository) DeleteByUserAndToken(ctx context.Context, userID uint, token string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "RefreshTokenDeleteByUserAndToken")

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&model.RefreshToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete refresh token for user").
			Uint("user_id", userID).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

// DeleteAllForUser revokes every active session of the user
func (r *RefreshTokenRepository) DeleteAllForUser(ctx context.Context, userID uint) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "RefreshTokenDeleteAllForUser")

	start := time.Now()
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete refresh tokens for user").
			Uint("user_id", userID).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	logger.InfoWithContext(ctx, "Refresh tokens revoked for user").
		Uint("user_id", userID).
		Int64("revoked_count", result.RowsAffected).
		Duration(time.Since(start)).
		Log()

	return result.RowsAffected, nil
}

// DeleteExpired removes rows past their expiry (batch cleanup)
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "RefreshTokenDeleteExpired")

	result := r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&model.RefreshToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to clean up expired refresh tokens").
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

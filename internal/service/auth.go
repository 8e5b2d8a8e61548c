package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teamforge/backend/internal/dto"
	apperrors "github.com/teamforge/backend/internal/errors"
	"github.com/teamforge/backend/internal/model"
	ctxutil "github.com/teamforge/backend/pkg/context"
	"github.com/teamforge/backend/pkg/logger"
	"gorm.io/gorm"
)

// resetTokenTTL is the lifetime of a password-reset grant
const resetTokenTTL = 15 * time.Minute

// genericResetMessage is returned by RequestPasswordReset whether or not
// the email exists. A response that varies by account existence is an
// enumeration oracle.
const genericResetMessage = "If an account exists for that email, a reset link has been sent"

// AuthService composes the credential store, token service, and the two
// persisted ledgers into the register/login/refresh/logout and password
// lifecycle operations.
type AuthService struct {
	users       UserStore
	sessions    RefreshTokenStore
	resets      PasswordResetStore
	credentials *CredentialService
	tokens      *TokenService
	mailer      ResetTokenSender
}

func NewAuthService(
	users UserStore,
	sessions RefreshTokenStore,
	resets PasswordResetStore,
	credentials *CredentialService,
	tokens *TokenService,
	mailer ResetTokenSender,
) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		resets:      resets,
		credentials: credentials,
		tokens:      tokens,
		mailer:      mailer,
	}
}

// GenericResetMessage is the enumeration-proof forgot-password response text
func (s *AuthService) GenericResetMessage() string {
	return genericResetMessage
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            user.ID,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Email:         user.Email,
		Avatar:        user.Avatar,
		EmailVerified: user.EmailVerified,
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

// issueTokenPair mints an access+refresh pair and persists the ledger row.
// Register, login, and refresh all funnel through here so issuance
// semantics cannot drift between entry points.
func (s *AuthService) issueTokenPair(ctx context.Context, userID uint, email string) (*dto.TokenPair, error) {
	tokenID := uuid.NewString()

	accessToken, err := s.tokens.IssueAccessToken(userID, email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(userID, tokenID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	row := &model.RefreshToken{
		ID:        tokenID,
		UserID:    userID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
	}
	if err := s.sessions.Create(ctx, row); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.tokens.AccessTTLSeconds(),
	}, nil
}

// Register creates a user and opens their first session
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Register")
	email := normalizeEmail(req.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		logger.WarnWithContext(ctx, "Registration rejected, email exists").
			String("email", email).
			Log()
		return nil, apperrors.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if violations := s.credentials.ValidatePasswordStrength(req.Password); len(violations) > 0 {
		return nil, apperrors.NewDomainError("WEAK_PASSWORD",
			"password "+strings.Join(violations, ", "))
	}

	hashedPassword, err := s.credentials.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  hashedPassword,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Unique-constraint race between the existence check and the insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailExists
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	tokens, err := s.issueTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "User registered").
		String("email", user.Email).
		Uint("user_id", user.ID).
		Log()

	return &dto.AuthResponse{User: toUserResponse(user), Tokens: *tokens}, nil
}

// Login authenticates credentials and opens a new session. Unknown email
// and wrong password return the same error so responses cannot be used to
// probe which addresses are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WarnWithContext(ctx, "Login failed, unknown email").
				String("email", email).
				Log()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.credentials.ComparePassword(user.Password, password) {
		logger.WarnWithContext(ctx, "Login failed, wrong password").
			Uint("user_id", user.ID).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Non-fatal, the session is still valid
		logger.WarnWithContext(ctx, "Failed to update last login").
			Uint("user_id", user.ID).
			Err(err).
			Log()
	}

	tokens, err := s.issueTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "User logged in").
		Uint("user_id", user.ID).
		Log()

	now := time.Now()
	user.LastLoginAt = &now

	return &dto.AuthResponse{User: toUserResponse(user), Tokens: *tokens}, nil
}

// RefreshToken exchanges a live refresh token for a fresh pair, deleting
// the presented token's ledger row. Strict one-time use: a concurrent
// second exchange of the same token observes the row already gone and
// fails Unauthorized.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "RefreshToken")

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Refresh rejected, token failed verification").
			Err(err).
			Log()
		return nil, err
	}

	row, err := s.sessions.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WarnWithContext(ctx, "Refresh rejected, token not in ledger").
				Uint("user_id", claims.UserID).
				Log()
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if row.ExpiresAt.Before(time.Now()) {
		// Stale row cleanup; the outcome stays Unauthorized either way
		if _, err := s.sessions.DeleteByID(ctx, row.ID); err != nil {
			logger.WarnWithContext(ctx, "Failed to delete expired refresh token").
				String("token_id", row.ID).
				Err(err).
				Log()
		}
		return nil, apperrors.ErrTokenExpired
	}

	// Rotation: consume the old grant before minting the new one. Zero
	// rows affected means another request got here first.
	deleted, err := s.sessions.DeleteByID(ctx, row.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if deleted == 0 {
		logger.WarnWithContext(ctx, "Refresh rejected, token already rotated").
			String("token_id", row.ID).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	tokens, err := s.issueTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Refresh token rotated").
		Uint("user_id", user.ID).
		Log()

	return tokens, nil
}

// Logout revokes the matching session when a refresh token is supplied, or
// every session of the user otherwise. Idempotent: revoking an absent
// token is not an error.
func (s *AuthService) Logout(ctx context.Context, userID uint, refreshToken string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Logout")

	if refreshToken != "" {
		if err := s.sessions.DeleteByUserAndToken(ctx, userID, refreshToken); err != nil {
			return apperrors.WrapError(apperrors.ErrInternal, err)
		}
	} else {
		if _, err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
			return apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	logger.InfoWithContext(ctx, "User logged out").
		Uint("user_id", userID).
		Bool("single_session", refreshToken != "").
		Log()

	return nil
}

// GetProfile returns the public projection of the user
func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetProfile")

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	response := toUserResponse(user)
	return &response, nil
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every refresh token of the user. The revocation is a correctness
// requirement: a password change must force re-authentication everywhere.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ChangePassword")

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.credentials.ComparePassword(user.Password, currentPassword) {
		logger.WarnWithContext(ctx, "Password change rejected, wrong current password").
			Uint("user_id", userID).
			Log()
		return apperrors.ErrIncorrectPassword
	}

	if violations := s.credentials.ValidatePasswordStrength(newPassword); len(violations) > 0 {
		return apperrors.NewDomainError("WEAK_PASSWORD",
			"password "+strings.Join(violations, ", "))
	}

	hashedPassword, err := s.credentials.HashPassword(newPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password changed, all sessions revoked").
		Uint("user_id", userID).
		Log()

	return nil
}

// RequestPasswordReset creates a one-time reset grant for the account, if
// it exists, and hands the raw token to the delivery collaborator. The
// caller-facing outcome is identical either way. Any previously pending
// grant is invalidated first: at most one live reset token per user.
//
// The returned raw token exists so the handler can expose it outside
// production; it must never be logged or persisted.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "RequestPasswordReset")
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.InfoWithContext(ctx, "Password reset requested for unknown email").
				Log()
			return "", nil
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.resets.DeleteUnusedForUser(ctx, user.ID); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	rawToken, err := s.credentials.GenerateResetToken()
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	row := &model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: s.credentials.HashResetToken(rawToken),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resets.Create(ctx, row); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if s.mailer != nil {
		// Delivery happens off the request path; a mail failure must not
		// change the response
		go func(toEmail, token string) {
			sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.mailer.SendPasswordResetEmail(sendCtx, toEmail, token); err != nil {
				logger.GetLogger().Warn("Failed to send password reset email")
			}
		}(user.Email, rawToken)
	}

	logger.InfoWithContext(ctx, "Password reset token issued").
		Uint("user_id", user.ID).
		Log()

	return rawToken, nil
}

// ResetPassword consumes a reset grant. Missing, used, and expired tokens
// all fail with the same error; the row is marked used rather than deleted
// to keep an audit trail, and every refresh token of the user is revoked.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ResetPassword")

	row, err := s.resets.GetByHash(ctx, s.credentials.HashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if row.Used || row.ExpiresAt.Before(time.Now()) {
		logger.WarnWithContext(ctx, "Reset rejected, token used or expired").
			Uint("user_id", row.UserID).
			Bool("used", row.Used).
			Log()
		return apperrors.ErrInvalidResetToken
	}

	if violations := s.credentials.ValidatePasswordStrength(newPassword); len(violations) > 0 {
		return apperrors.NewDomainError("WEAK_PASSWORD",
			"password "+strings.Join(violations, ", "))
	}

	hashedPassword, err := s.credentials.HashPassword(newPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdatePassword(ctx, row.UserID, hashedPassword); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.resets.MarkUsed(ctx, row.ID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.sessions.DeleteAllForUser(ctx, row.UserID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password reset completed, all sessions revoked").
		Uint("user_id", row.UserID).
		Log()

	return nil
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamforge/backend/internal/constants"
	"github.com/teamforge/backend/internal/dto"
	apperrors "github.com/teamforge/backend/internal/errors"
	"github.com/teamforge/backend/internal/service"
	ctxutil "github.com/teamforge/backend/pkg/context"
	"github.com/teamforge/backend/pkg/logger"
	"github.com/teamforge/backend/pkg/validation"
)

type AuthHandler struct {
	authService *service.AuthService
	production  bool
}

func NewAuthHandler(authService *service.AuthService, production bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		production:  production,
	}
}

// Register handles new account creation
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Register")

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", validation.FormatBindingError(err)))
		return
	}

	response, err := h.authService.Register(ctx, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Registration failed").
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse("Registration successful", response))
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Login")

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", validation.FormatBindingError(err)))
		return
	}

	response, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		logger.WarnWithContext(ctx, "Login failed").
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Login successful", response))
}

// RefreshToken rotates a refresh token into a new pair
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "RefreshToken")

	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", validation.FormatBindingError(err)))
		return
	}

	tokens, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Token refresh failed").
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Token refreshed", tokens))
}

// Logout revokes the presented session, or all of the caller's sessions
// when no refresh token is supplied
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Logout")

	principal, ok := ctxutil.GetPrincipal(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	// Body is optional: absent or empty means all-devices logout
	var req dto.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.Logout(ctx, principal.UserID, req.RefreshToken); err != nil {
		logger.ErrorWithContext(ctx, "Logout failed").
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Logout successful", nil))
}

// Profile returns the caller's public profile
func (h *AuthHandler) Profile(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Profile")

	principal, ok := ctxutil.GetPrincipal(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	profile, err := h.authService.GetProfile(ctx, principal.UserID)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Profile retrieved", profile))
}

// ChangePassword verifies the current password and stores the new one,
// revoking every active session
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ChangePassword")

	principal, ok := ctxutil.GetPrincipal(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", validation.FormatBindingError(err)))
		return
	}

	if err := h.authService.ChangePassword(ctx, principal.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		logger.WarnWithContext(ctx, "Password change failed").
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Password changed", nil))
}

// ForgotPassword issues a reset token for the account, if it exists. The
// response is identical either way; outside production the raw token is
// included for development without a mail sink.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ForgotPassword")

	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", validation.FormatBindingError(err)))
		return
	}

	rawToken, err := h.authService.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		logger.ErrorWithContext(ctx, "Password reset request failed").
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	response := dto.ForgotPasswordResponse{Message: h.authService.GenericResetMessage()}
	if !h.production && rawToken != "" {
		response.DevOnlyResetTkn = rawToken
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(response.Message, response))
}

// ResetPassword consumes a reset token and stores the new password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ResetPassword")

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", validation.FormatBindingError(err)))
		return
	}

	if err := h.authService.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		logger.WarnWithContext(ctx, "Password reset failed").
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Password has been reset", nil))
}

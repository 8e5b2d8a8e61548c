package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teamforge/backend/internal/constants"
	apperrors "github.com/teamforge/backend/internal/errors"
	"github.com/teamforge/backend/internal/service"
	ctxutil "github.com/teamforge/backend/pkg/context"
	"github.com/teamforge/backend/pkg/logger"
	"go.uber.org/zap"
)

type JWTMiddleware struct {
	tokens *service.TokenService
}

func NewJWTMiddleware(tokens *service.TokenService) *JWTMiddleware {
	return &JWTMiddleware{tokens: tokens}
}

// RequireAuth validates the bearer access token and attaches the resolved
// principal to the request context. The principal is resolved exactly once
// here; downstream handlers read it, never rewrite it.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.GetLogger().Warn("Missing Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.GetLogger().Warn("Invalid Authorization header format",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
			c.Abort()
			return
		}

		claims, err := m.tokens.VerifyAccessToken(tokenParts[1])
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				message = "Token has expired"
			}
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(message, nil))
			c.Abort()
			return
		}

		principal := ctxutil.Principal{UserID: claims.UserID, Email: claims.Email}
		ctx := ctxutil.WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

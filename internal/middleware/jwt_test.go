package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/teamforge/backend/config"
	"github.com/teamforge/backend/internal/service"
	ctxutil "github.com/teamforge/backend/pkg/context"
)

func newJWTTestRouter(t *testing.T) (*gin.Engine, *service.TokenService) {
	t.Helper()
	tokens, err := service.NewTokenService(config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     "15m",
		RefreshTTL:    "7d",
	}, "test")
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", NewJWTMiddleware(tokens).RequireAuth(), func(c *gin.Context) {
		principal, ok := ctxutil.GetPrincipal(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": principal.UserID, "email": principal.Email})
	})
	return router, tokens
}

func TestRequireAuth(t *testing.T) {
	router, tokens := newJWTTestRouter(t)

	access, err := tokens.IssueAccessToken(42, "user@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}
	refresh, err := tokens.IssueRefreshToken(42, "row-id")
	if err != nil {
		t.Fatalf("IssueRefreshToken returned error: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		expected   int
	}{
		{
			name:       "Valid bearer token",
			authHeader: "Bearer " + access,
			expected:   http.StatusOK,
		},
		{
			name:       "Missing header",
			authHeader: "",
			expected:   http.StatusUnauthorized,
		},
		{
			name:       "Wrong scheme",
			authHeader: "Basic " + access,
			expected:   http.StatusUnauthorized,
		},
		{
			name:       "Malformed header",
			authHeader: "Bearer",
			expected:   http.StatusUnauthorized,
		},
		{
			name:       "Garbage token",
			authHeader: "Bearer not.a.jwt",
			expected:   http.StatusUnauthorized,
		},
		{
			name:       "Refresh token is not an access token",
			authHeader: "Bearer " + refresh,
			expected:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			router.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, w.Code)
			}
		})
	}
}

package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/teamforge/backend/config"
	"github.com/teamforge/backend/internal/constants"
	apperrors "github.com/teamforge/backend/internal/errors"
)

// defaultTTLSeconds is the fallback when a configured TTL string cannot be
// parsed
const defaultTTLSeconds = 900

// TokenService issues and verifies the two JWT flavors: short-lived access
// tokens signed with the access secret and long-lived refresh tokens signed
// with a distinct refresh secret.
type TokenService struct {
	accessSecret      string
	refreshSecret     string
	accessTTLSeconds  int
	refreshTTLSeconds int
}

// NewTokenService builds the token service. In production mode it refuses
// to start while either secret still equals the shipped placeholder: a
// token signed with a known value is worse than no service at all.
func NewTokenService(cfg config.JWTConfig, environment string) (*TokenService, error) {
	if environment == constants.EnvProduction {
		if cfg.AccessSecret == config.PlaceholderSecret || cfg.RefreshSecret == config.PlaceholderSecret {
			return nil, fmt.Errorf("refusing to start with placeholder JWT secret in production")
		}
	}

	return &TokenService{
		accessSecret:      cfg.AccessSecret,
		refreshSecret:     cfg.RefreshSecret,
		accessTTLSeconds:  ExpirySeconds(cfg.AccessTTL),
		refreshTTLSeconds: ExpirySeconds(cfg.RefreshTTL),
	}, nil
}

// ExpirySeconds parses a duration string with an s/m/h/d unit suffix into
// seconds. Unrecognized input falls back to 900 seconds rather than failing.
func ExpirySeconds(ttl string) int {
	ttl = strings.TrimSpace(ttl)
	if len(ttl) < 2 {
		return defaultTTLSeconds
	}

	value, err := strconv.Atoi(ttl[:len(ttl)-1])
	if err != nil || value <= 0 {
		return defaultTTLSeconds
	}

	switch ttl[len(ttl)-1] {
	case 's':
		return value
	case 'm':
		return value * 60
	case 'h':
		return value * 3600
	case 'd':
		return value * 86400
	default:
		return defaultTTLSeconds
	}
}

// AccessTTLSeconds returns the access token lifetime in seconds
func (s *TokenService) AccessTTLSeconds() int {
	return s.accessTTLSeconds
}

// RefreshTTL returns the refresh token lifetime
func (s *TokenService) RefreshTTL() time.Duration {
	return time.Duration(s.refreshTTLSeconds) * time.Second
}

// IssueAccessToken signs a short-lived access token for the user
func (s *TokenService) IssueAccessToken(userID uint, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     now.Add(time.Duration(s.accessTTLSeconds) * time.Second).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.accessSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken signs a long-lived refresh token whose token_id claim
// matches the ledger row's primary key, so a session can be revoked by id
// without decoding every stored token.
func (s *TokenService) IssueRefreshToken(userID uint, tokenID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"token_id": tokenID,
		"exp":      now.Add(time.Duration(s.refreshTTLSeconds) * time.Second).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.refreshSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// AccessClaims is the verified payload of an access token
type AccessClaims struct {
	UserID uint
	Email  string
}

// RefreshClaims is the verified payload of a refresh token
type RefreshClaims struct {
	UserID  uint
	TokenID string
}

// VerifyAccessToken checks signature and expiry of an access token.
// Expired and malformed tokens surface as distinct error kinds for user
// messaging; both map to 401.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims, err := s.parse(tokenString, s.accessSecret)
	if err != nil {
		return nil, err
	}

	userID, ok := claimUint(claims, "user_id")
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return &AccessClaims{UserID: userID, Email: email}, nil
}

// VerifyRefreshToken checks signature and expiry of a refresh token
func (s *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims, err := s.parse(tokenString, s.refreshSecret)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidRefreshToken
	}

	userID, ok := claimUint(claims, "user_id")
	if !ok {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	tokenID, ok := claims["token_id"].(string)
	if !ok || tokenID == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	return &RefreshClaims{UserID: userID, TokenID: tokenID}, nil
}

func (s *TokenService) parse(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// claimUint extracts a numeric claim; JSON numbers decode as float64
func claimUint(claims jwt.MapClaims, key string) (uint, bool) {
	switch v := claims[key].(type) {
	case float64:
		return uint(v), true
	case uint:
		return v, true
	case int:
		return uint(v), true
	}
	return 0, false
}

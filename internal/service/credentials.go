package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// passwordSymbols is the punctuation set accepted as the required symbol
// character
const passwordSymbols = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"

// CredentialService hashes and verifies passwords and mints opaque reset
// tokens. Passwords use bcrypt; reset tokens are random bearer secrets whose
// SHA-256 digest is the only stored form.
type CredentialService struct {
	cost int
}

func NewCredentialService() *CredentialService {
	return &CredentialService{cost: bcrypt.DefaultCost}
}

// HashPassword hashes a password using bcrypt
func (s *CredentialService) HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// ComparePassword verifies a password against its stored hash
func (s *CredentialService) ComparePassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// GenerateResetToken creates a cryptographically random reset token. The
// returned value is the bearer secret and must never be persisted or logged.
func (s *CredentialService) GenerateResetToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// HashResetToken derives the storage/lookup digest of a raw reset token
func (s *CredentialService) HashResetToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// ValidatePasswordStrength checks the password policy shared by the
// registration, change-password, and reset-password paths. Returns the list
// of violations, empty when the password is acceptable.
func (s *CredentialService) ValidatePasswordStrength(password string) []string {
	var violations []string

	if len(password) < 8 {
		violations = append(violations, "must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		violations = append(violations, "must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "must contain at least one lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "must contain at least one digit")
	}
	if !hasSymbol {
		violations = append(violations, "must contain at least one symbol")
	}

	return violations
}

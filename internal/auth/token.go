// Package auth implements the credential boundary: bcrypt password hashing
// and signed bearer tokens resolving to an account identity.
package auth

import (
	"errors"
	"time"

	"backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is the validity window applied when Config.TokenTTL is zero.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Config carries the signing secret and token lifetime. It is built once at
// startup and passed in explicitly; the package reads no ambient state.
type Config struct {
	Secret   []byte
	TokenTTL time.Duration
}

// Manager signs and verifies HS256 bearer tokens carrying an account id.
type Manager struct {
	cfg Config
}

func NewManager(cfg Config) *Manager {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	return &Manager{cfg: cfg}
}

// Sign issues a token for the account, expiring TokenTTL from now.
func (m *Manager) Sign(accountID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TokenTTL)),
	})
	return token.SignedString(m.cfg.Secret)
}

// Verify parses the token and returns the account id it carries.
// Returns apperror.ErrTokenExpired for expired tokens and
// apperror.ErrInvalidToken for everything else that fails.
func (m *Manager) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apperror.ErrTokenExpired
		}
		return uuid.Nil, apperror.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, apperror.ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, apperror.ErrInvalidToken
	}

	accountID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperror.ErrInvalidToken
	}

	return accountID, nil
}

// HashPassword returns the bcrypt digest of a plaintext password.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether the plaintext matches the stored digest.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

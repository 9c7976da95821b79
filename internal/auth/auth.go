// Package auth implements password hashing and bearer-token issuance.
//
// Passwords are stored as bcrypt hashes. Sessions are stateless HS256 JWTs
// carrying the user ID; anything invalid, expired or tampered with collapses
// into ErrInvalidToken so callers never branch on parser internals.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Manager hashes passwords and issues/verifies access tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	cost   int
}

func NewManager(secret string, ttl time.Duration, bcryptCost int) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcryptCost,
	}
}

// TokenTTL returns the configured token lifetime.
func (m *Manager) TokenTTL() time.Duration {
	return m.ttl
}

// HashPassword hashes a plaintext password with bcrypt.
func (m *Manager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored hash.
func (m *Manager) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a new access token for the given user.
// It returns the token string and its expiry time.
func (m *Manager) IssueToken(userID int64) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseToken verifies the signature and validity window of a token and
// returns the user ID it was issued for.
func (m *Manager) ParseToken(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is what a verified session token carries.
type Claims struct {
	UserID    uuid.UUID
	SessionID string
	ExpiresAt time.Time
}

var errMissingSubject = errors.New("token has no subject")

// GenerateToken signs an HS256 token for userID. sessionID becomes the token
// id and expiresAt its expiry.
func GenerateToken(secret string, userID uuid.UUID, sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies signature and expiry. Tokens without an expiry are
// refused.
func ParseToken(secret, tokenString string) (*Claims, error) {
	var registered jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &registered, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if registered.Subject == "" {
		return nil, errMissingSubject
	}
	userID, err := uuid.Parse(registered.Subject)
	if err != nil {
		return nil, err
	}

	return &Claims{
		UserID:    userID,
		SessionID: registered.ID,
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}

// Package auth mints and verifies the HS256 access tokens the dev server
// issues at login. Each token is bound to one server-side session record
// via the SessionID claim.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/autoauthor/autoauthor/internal/common"
)

// Claims carries the registered claims plus the user and session bindings.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
}

func GenerateToken(userID, sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:    userID,
		SessionID: sessionID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies the signature and returns the user and session IDs.
// An expired or otherwise invalid token maps to common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (userID, sessionID string, err error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", common.ErrSessionExpired
		}
		return "", "", common.ErrInvalidToken
	}
	if !token.Valid {
		return "", "", common.ErrInvalidToken
	}
	return claims.UserID, claims.SessionID, nil
}

package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer mints bearer tokens after a login outcome so API clients are
// not pushed through verification on every request. The session window
// itself is still decided by the stored last-login timestamp.
type TokenIssuer struct {
	secret string
	expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, expiry: expiry}
}

func (t *TokenIssuer) Issue(phoneNumber string) (string, time.Time, error) {
	expiresAt := time.Now().Add(t.expiry)
	claims := jwt.MapClaims{
		"sub": phoneNumber,
		"jti": uuid.New().String(),
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify returns the phone number the token was minted for.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	phoneNumber, ok := claims["sub"].(string)
	if !ok || phoneNumber == "" {
		return "", ErrInvalidToken
	}
	return phoneNumber, nil
}

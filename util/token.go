package util

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims are carried by login session tokens.
type SessionClaims struct {
	Email  string `json:"email"`
	UserID uint   `json:"user_id"`
	RoleID uint32 `json:"role"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs an HS256 token valid for ttl.
func GenerateSessionToken(userID uint, email string, roleID uint32, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email:  email,
		UserID: userID,
		RoleID: roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        fmt.Sprintf("%d-%d", userID, now.UnixNano()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(GetJWTSecretByte())
}

// ParseSessionToken verifies the signature and expiry of a session token.
func ParseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return GetJWTSecretByte(), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

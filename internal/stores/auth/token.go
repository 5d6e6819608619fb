// internal/stores/auth/token.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"delivery-engine/internal/common/config"
	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/models"
)

// Claims is the session token payload.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func tokenTTL(cfg config.AuthConfig) time.Duration {
	if cfg.TokenTTLMinutes == 0 {
		return time.Hour
	}
	return time.Duration(cfg.TokenTTLMinutes) * time.Minute
}

// generateToken signs a session token for a user.
func generateToken(cfg config.AuthConfig, user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL(cfg))),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a session token signature and expiry and returns the
// claims.
func ParseToken(cfg config.AuthConfig, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, stderrors.NewTokenInvalidError(err)
	}
	if !token.Valid {
		return nil, stderrors.NewTokenInvalidError(errors.New("token failed validation"))
	}
	return claims, nil
}

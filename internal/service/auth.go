package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blogapi/internal/config"
	"blogapi/internal/model"
)

// Claims carried by access tokens.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies HS256 access tokens.
type AuthService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		secret:   []byte(cfg.JWTSecret),
		lifetime: time.Duration(cfg.JWTLifetime) * time.Second,
		now:      time.Now,
	}
}

// IssueToken signs a token for the user.
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a bearer token and returns the user id it was issued
// for. Every failure is ErrInvalidToken.
func (s *AuthService) ParseToken(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("token expired: %w", model.ErrInvalidToken)
		}
		return 0, model.ErrInvalidToken
	}
	if !token.Valid || claims.UserID <= 0 {
		return 0, model.ErrInvalidToken
	}
	return claims.UserID, nil
}

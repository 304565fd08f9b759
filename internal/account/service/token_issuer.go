package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/screentime-labs/tracker/backend/internal/account/domain"
)

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func (t *tokenIssuer) issue(account domain.Account, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":      string(account.ID),
		"username": account.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(t.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

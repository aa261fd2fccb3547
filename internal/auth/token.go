package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

// TokenIssuer signs and verifies the bearer tokens used by /api clients.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(p access.Principal) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub":       p.UserID,
		"username":  p.Username,
		"role":      p.Role,
		"superuser": p.Superuser,
		"exp":       now.Add(t.ttl).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) Parse(tokenString string) (access.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return access.Principal{}, fmt.Errorf("invalid_token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return access.Principal{}, fmt.Errorf("invalid_token_claims")
	}

	sub, ok1 := claims["sub"].(float64)
	role, ok2 := claims["role"].(string)
	username, _ := claims["username"].(string)
	superuser, _ := claims["superuser"].(bool)
	if !ok1 || !ok2 || !models.IsValidRole(role) {
		return access.Principal{}, fmt.Errorf("invalid_token_payload")
	}

	return access.Principal{
		UserID:    uint(sub),
		Username:  username,
		Role:      role,
		Superuser: superuser,
	}, nil
}

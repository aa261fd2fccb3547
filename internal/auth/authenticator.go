// Package auth verifies credentials and issues API tokens.
package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

// InvalidCredentials is the only message a failed login ever shows, so
// callers cannot tell a wrong username from a wrong password.
const InvalidCredentials = "Invalid credentials."

// UserStore is the part of the user table the authenticator reads.
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Superuser is a configured admin credential that bypasses the store.
type Superuser struct {
	Username string
	Password string
}

func (s Superuser) enabled() bool {
	return s.Username != "" && s.Password != ""
}

func (s Superuser) matches(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(s.Username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(s.Password))
	return u&p == 1
}

type Authenticator struct {
	users     UserStore
	superuser Superuser
}

func NewAuthenticator(users UserStore, superuser Superuser) *Authenticator {
	return &Authenticator{users: users, superuser: superuser}
}

// Authenticate returns the principal for a username/password pair:
//  1. the configured superuser is an admin without touching the store;
//  2. a stored user whose bcrypt hash matches gets its stored role;
//  3. anything else is authentication_failed.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (access.Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return access.Principal{}, failed()
	}

	if a.superuser.enabled() && a.superuser.matches(username, password) {
		return access.Principal{
			Username:  username,
			Role:      models.RoleAdmin,
			Superuser: true,
		}, nil
	}

	user, err := a.users.FindUserByUsername(ctx, username)
	if err != nil {
		if httperr.IsBusiness(err, httperr.CodeNotFound) {
			return access.Principal{}, failed()
		}
		return access.Principal{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return access.Principal{}, failed()
	}

	if !models.IsValidRole(user.Role) {
		return access.Principal{}, failed()
	}

	return access.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func failed() error {
	return httperr.New(httperr.CodeAuthenticationFailed, InvalidCredentials)
}

// HashPassword returns the bcrypt hash stored on users.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

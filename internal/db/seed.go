package db

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agent-crm/internal/models"
)

// SeedAdmin creates the default admin on first boot. It reports whether a
// user was created.
func SeedAdmin(ctx context.Context, db *gorm.DB, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	var existing models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup seed admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash seed admin password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return false, fmt.Errorf("create seed admin: %w", err)
	}

	return true, nil
}

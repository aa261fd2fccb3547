package models

import "time"

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Username     string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:'agent'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleAgent
}

package models

import "time"

// Client is a contact tracked by the CRM, optionally assigned to one agent.
type Client struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name     string `gorm:"size:150;not null" json:"name"`
	Wallet   string `gorm:"size:255" json:"wallet"`
	FullName string `gorm:"size:150" json:"full_name"`
	Email    string `gorm:"size:150;index" json:"email"`
	Phone    string `gorm:"size:50" json:"phone"`
	Status   string `gorm:"size:50;not null;default:'NEW'" json:"status"`
	Tags     string `gorm:"size:255" json:"tags"`
	Notes    string `gorm:"type:text" json:"notes"`

	AssignedAgentID *uint `gorm:"index" json:"assigned_agent_id"`
	AssignedAgent   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"assigned_agent,omitempty"`

	LastContactAt *time.Time `json:"last_contact_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

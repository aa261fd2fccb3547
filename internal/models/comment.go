package models

import "time"

// Comment is an append-only note on a client.
type Comment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Body string `gorm:"type:text;not null" json:"body"`

	ClientID uint   `gorm:"index;not null" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	AuthorID uint `gorm:"not null" json:"author_id"`
	Author   User `json:"author"`

	CreatedAt time.Time `json:"created_at"`
}

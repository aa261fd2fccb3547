// Package session keeps server-side login sessions and flash messages.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/agent-crm/internal/access"
)

var ErrNotFound = errors.New("session not found")

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Data is what a session id maps to. Anonymous sessions only carry
// flashes.
type Data struct {
	UserID    uint      `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Role      string    `json:"role,omitempty"`
	Superuser bool      `json:"superuser,omitempty"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func FromPrincipal(p access.Principal) *Data {
	return &Data{
		UserID:    p.UserID,
		Username:  p.Username,
		Role:      p.Role,
		Superuser: p.Superuser,
	}
}

func (d *Data) Principal() access.Principal {
	if d == nil {
		return access.Principal{}
	}
	return access.Principal{
		UserID:    d.UserID,
		Username:  d.Username,
		Role:      d.Role,
		Superuser: d.Superuser,
	}
}

func (d *Data) AddFlash(category, message string) {
	d.Flashes = append(d.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns pending flashes and clears them.
func (d *Data) PopFlashes() []Flash {
	out := d.Flashes
	d.Flashes = nil
	return out
}

type Store interface {
	// Create stores data under a fresh id.
	Create(ctx context.Context, data *Data) (string, error)
	// Get returns ErrNotFound for unknown or expired ids and refreshes the
	// expiry of live ones.
	Get(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data) error
	Delete(ctx context.Context, id string) error
}

func newID() string {
	return uuid.NewString()
}

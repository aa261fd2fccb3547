package client

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/auth"
	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type ClientInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email,max=200"`
	Phone    string `json:"phone" validate:"max=50"`
	Wallet   string `json:"wallet" validate:"max=200"`
	FullName string `json:"full_name" validate:"max=200"`
	Status   string `json:"status" validate:"max=50"`
	Tags     string `json:"tags" validate:"max=500"`
	Notes    string `json:"notes"`

	// AssignedAgentID is only honoured for admins.
	AssignedAgentID *uint `json:"assigned_agent_id"`
}

// lineBreaks folds CRLF and lone CR into LF. encoding/csv reads quoted
// CRLF back as LF, so stored text must already use LF to survive an
// export and re-import.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func cleanText(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

func (in *ClientInput) normalize() {
	in.Name = cleanText(in.Name)
	in.Email = cleanText(in.Email)
	in.Phone = cleanText(in.Phone)
	in.Wallet = cleanText(in.Wallet)
	in.FullName = cleanText(in.FullName)
	in.Status = domain.NormalizeStatus(in.Status)
	in.Tags = cleanText(in.Tags)
	in.Notes = cleanText(in.Notes)

	if in.AssignedAgentID != nil && *in.AssignedAgentID == 0 {
		in.AssignedAgentID = nil
	}
}

func (in *ClientInput) apply(c *models.Client) {
	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Wallet = in.Wallet
	c.FullName = in.FullName
	c.Status = in.Status
	c.Tags = in.Tags
	c.Notes = in.Notes
}

// ======================================================
// HELPERS
// ======================================================

// ensureAgent checks that id, when set, names an existing agent.
func ensureAgent(ctx context.Context, repo domain.Repository, id *uint) error {
	if id == nil {
		return nil
	}

	user, err := repo.GetUser(ctx, *id)
	if err != nil {
		if httperr.IsBusiness(err, httperr.CodeNotFound) {
			return httperr.New(httperr.CodeNotFound, "Agent not found.")
		}
		return err
	}
	if user.Role != models.RoleAgent {
		return httperr.New(httperr.CodeNotFound, "Agent not found.")
	}
	return nil
}

// authorID returns the user row that authors actions of p. The configured
// superuser has none, so one is created on first use with an unusable
// password.
func authorID(ctx context.Context, repo domain.Repository, p access.Principal) (uint, error) {
	if p.UserID != 0 {
		return p.UserID, nil
	}

	user, err := repo.FindUserByUsername(ctx, p.Username)
	if err == nil {
		if user.Role != models.RoleAdmin {
			return 0, httperr.New(httperr.CodeConflict, "Username already exists.")
		}
		return user.ID, nil
	}
	if !httperr.IsBusiness(err, httperr.CodeNotFound) {
		return 0, err
	}

	hash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return 0, httperr.Wrap(httperr.CodeStorageError, "failed_to_hash_password", err)
	}

	user = &models.User{Username: p.Username, PasswordHash: hash, Role: models.RoleAdmin}
	if err := repo.CreateUser(ctx, user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

func ptr(id uint) *uint {
	return &id
}

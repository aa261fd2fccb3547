package agent

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	"github.com/BruksfildServices01/agent-crm/internal/auth"
	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/models"
	"github.com/BruksfildServices01/agent-crm/internal/validators"
)

const MinPasswordLength = 6

// ======================================================
// INPUT
// ======================================================

type CreateAgentInput struct {
	Username string `json:"username" validate:"required,max=80"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ======================================================
// USE CASE
// ======================================================

type CreateAgent struct {
	repo   domain.Repository
	audit  audit.Sink
	policy access.Policy
}

func NewCreateAgent(repo domain.Repository, audit audit.Sink, policy access.Policy) *CreateAgent {
	return &CreateAgent{repo: repo, audit: audit, policy: policy}
}

func (uc *CreateAgent) Execute(
	ctx context.Context,
	actor access.Principal,
	in CreateAgentInput,
) (*models.User, error) {

	if err := access.Check(actor, access.CapCreateAgent, uc.policy).Err(); err != nil {
		return nil, err
	}

	in.Username = strings.TrimSpace(in.Username)
	if err := validators.Struct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, httperr.Wrap(httperr.CodeStorageError, "failed_to_hash_password", err)
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         models.RoleAgent,
	}

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.EventFor(actor, audit.ActionAgentCreated, audit.EntityUser, &user.ID, map[string]string{
		"username": user.Username,
	}))

	return user, nil
}

// ======================================================
// LIST
// ======================================================

type ListAgents struct {
	repo   domain.Repository
	policy access.Policy
}

func NewListAgents(repo domain.Repository, policy access.Policy) *ListAgents {
	return &ListAgents{repo: repo, policy: policy}
}

func (uc *ListAgents) Execute(ctx context.Context, actor access.Principal) ([]models.User, error) {
	if err := access.Check(actor, access.CapViewAgents, uc.policy).Err(); err != nil {
		return nil, err
	}
	return uc.repo.ListAgents(ctx)
}

package client

import (
	"context"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/models"
	"github.com/BruksfildServices01/agent-crm/internal/validators"
)

type CreateClient struct {
	repo   domain.Repository
	audit  audit.Sink
	policy access.Policy
}

func NewCreateClient(repo domain.Repository, audit audit.Sink, policy access.Policy) *CreateClient {
	return &CreateClient{repo: repo, audit: audit, policy: policy}
}

func (uc *CreateClient) Execute(
	ctx context.Context,
	actor access.Principal,
	in ClientInput,
) (*models.Client, error) {

	if err := access.Check(actor, access.CapCreateClient, uc.policy).Err(); err != nil {
		return nil, err
	}

	in.normalize()
	if err := validators.Struct(in); err != nil {
		return nil, err
	}

	// Agents always own what they create.
	if actor.IsAgent() {
		in.AssignedAgentID = ptr(actor.UserID)
	}

	c := &models.Client{AssignedAgentID: in.AssignedAgentID}
	in.apply(c)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if actor.IsAdmin() {
			if err := ensureAgent(ctx, tx, c.AssignedAgentID); err != nil {
				return err
			}
		}
		return tx.CreateClient(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.EventFor(actor, audit.ActionClientCreated, audit.EntityClient, &c.ID, map[string]any{
		"name": c.Name,
	}))

	return c, nil
}

package client

import (
	"context"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/models"
	"github.com/BruksfildServices01/agent-crm/internal/validators"
)

type UpdateClient struct {
	repo   domain.Repository
	audit  audit.Sink
	policy access.Policy
}

func NewUpdateClient(repo domain.Repository, audit audit.Sink, policy access.Policy) *UpdateClient {
	return &UpdateClient{repo: repo, audit: audit, policy: policy}
}

// Execute replaces the editable fields of a client. Only admins move a
// client between agents; an agent's edit keeps the current assignment.
func (uc *UpdateClient) Execute(
	ctx context.Context,
	actor access.Principal,
	clientID uint,
	in ClientInput,
) (*models.Client, error) {

	if err := access.Check(actor, access.CapEditClient, uc.policy).Err(); err != nil {
		return nil, err
	}

	in.normalize()
	if err := validators.Struct(in); err != nil {
		return nil, err
	}

	var c *models.Client
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		c, err = tx.GetClient(ctx, clientID)
		if err != nil {
			return err
		}

		if err := access.CheckClient(actor, access.CapEditClient, c, uc.policy).Err(); err != nil {
			return err
		}

		in.apply(c)

		if actor.IsAdmin() {
			if err := ensureAgent(ctx, tx, in.AssignedAgentID); err != nil {
				return err
			}
			c.AssignedAgentID = in.AssignedAgentID
			c.AssignedAgent = nil
		}

		return tx.UpdateClient(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.EventFor(actor, audit.ActionClientUpdated, audit.EntityClient, &c.ID, nil))
	return c, nil
}

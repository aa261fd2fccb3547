package client

import (
	"context"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

type AssignClient struct {
	repo   domain.Repository
	audit  audit.Sink
	policy access.Policy
}

func NewAssignClient(repo domain.Repository, audit audit.Sink, policy access.Policy) *AssignClient {
	return &AssignClient{repo: repo, audit: audit, policy: policy}
}

// Execute assigns the client to agentID, or unassigns it when agentID is
// nil.
func (uc *AssignClient) Execute(
	ctx context.Context,
	actor access.Principal,
	clientID uint,
	agentID *uint,
) (*models.Client, error) {

	if err := access.Check(actor, access.CapAssignClient, uc.policy).Err(); err != nil {
		return nil, err
	}

	if agentID != nil && *agentID == 0 {
		agentID = nil
	}

	var c *models.Client
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		c, err = tx.GetClient(ctx, clientID)
		if err != nil {
			return err
		}

		if err := ensureAgent(ctx, tx, agentID); err != nil {
			return err
		}

		c.AssignedAgentID = agentID
		c.AssignedAgent = nil
		return tx.UpdateClient(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.EventFor(actor, audit.ActionClientAssigned, audit.EntityClient, &c.ID, map[string]any{
		"agent_id": agentID,
	}))
	return c, nil
}

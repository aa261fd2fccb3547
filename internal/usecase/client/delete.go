package client

import (
	"context"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
)

// ======================================================
// DELETE ONE
// ======================================================

type DeleteClient struct {
	repo   domain.Repository
	audit  audit.Sink
	policy access.Policy
}

func NewDeleteClient(repo domain.Repository, audit audit.Sink, policy access.Policy) *DeleteClient {
	return &DeleteClient{repo: repo, audit: audit, policy: policy}
}

func (uc *DeleteClient) Execute(ctx context.Context, actor access.Principal, clientID uint) error {
	if err := access.Check(actor, access.CapDeleteClient, uc.policy).Err(); err != nil {
		return err
	}

	if err := uc.repo.DeleteClient(ctx, clientID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.EventFor(actor, audit.ActionClientDeleted, audit.EntityClient, &clientID, nil))
	return nil
}

// ======================================================
// DELETE ALL
// ======================================================

type ClearClients struct {
	repo   domain.Repository
	audit  audit.Sink
	policy access.Policy
}

func NewClearClients(repo domain.Repository, audit audit.Sink, policy access.Policy) *ClearClients {
	return &ClearClients{repo: repo, audit: audit, policy: policy}
}

// Execute removes every client with its comments and returns how many
// clients were deleted.
func (uc *ClearClients) Execute(ctx context.Context, actor access.Principal) (int64, error) {
	if err := access.Check(actor, access.CapClearClients, uc.policy).Err(); err != nil {
		return 0, err
	}

	n, err := uc.repo.DeleteClients(ctx, nil)
	if err != nil {
		return 0, err
	}

	uc.audit.Dispatch(audit.EventFor(actor, audit.ActionClientsCleared, audit.EntityClient, nil, map[string]int64{
		"deleted": n,
	}))
	return n, nil
}

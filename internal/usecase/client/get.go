package client

import (
	"context"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	domain "github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

// ======================================================
// GET ONE
// ======================================================

type ClientDetail struct {
	Client   *models.Client
	Comments []models.Comment
}

type GetClient struct {
	repo   domain.Repository
	policy access.Policy
}

func NewGetClient(repo domain.Repository, policy access.Policy) *GetClient {
	return &GetClient{repo: repo, policy: policy}
}

func (uc *GetClient) Execute(ctx context.Context, actor access.Principal, clientID uint) (*ClientDetail, error) {
	if err := access.Check(actor, access.CapViewClients, uc.policy).Err(); err != nil {
		return nil, err
	}

	c, err := uc.repo.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if err := access.CheckClient(actor, access.CapViewClients, c, uc.policy).Err(); err != nil {
		return nil, err
	}

	comments, err := uc.repo.ListComments(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	return &ClientDetail{Client: c, Comments: comments}, nil
}

// ======================================================
// LIST
// ======================================================

type ListInput struct {
	Query  string
	Status string
}

type ListClients struct {
	repo   domain.Repository
	policy access.Policy
}

func NewListClients(repo domain.Repository, policy access.Policy) *ListClients {
	return &ListClients{repo: repo, policy: policy}
}

// Execute lists the clients actor may see, newest first.
func (uc *ListClients) Execute(ctx context.Context, actor access.Principal, in ListInput) ([]models.Client, error) {
	if err := access.Check(actor, access.CapViewClients, uc.policy).Err(); err != nil {
		return nil, err
	}

	return uc.repo.ListClients(ctx, domain.ClientFilter{
		AgentID: access.AgentScope(actor, uc.policy),
		Query:   in.Query,
		Status:  in.Status,
	})
}

// ======================================================
// EXPORT
// ======================================================

type ExportClients struct {
	repo   domain.Repository
	policy access.Policy
}

func NewExportClients(repo domain.Repository, policy access.Policy) *ExportClients {
	return &ExportClients{repo: repo, policy: policy}
}

// Execute returns the clients actor may export in id order.
func (uc *ExportClients) Execute(ctx context.Context, actor access.Principal) ([]models.Client, error) {
	if err := access.Check(actor, access.CapExportClients, uc.policy).Err(); err != nil {
		return nil, err
	}

	return uc.repo.ListClients(ctx, domain.ClientFilter{
		AgentID:     access.AgentScope(actor, uc.policy),
		OldestFirst: true,
	})
}
